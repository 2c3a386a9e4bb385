// Package protection implements document protection: password protection by
// whole-file encryption, restricted-editing markers, content-hash digital
// signatures, and integrity verification.
//
// Protection state lives in a sidecar file next to the document
// ("report.docx" -> "report.protection") so the document package itself
// stays standard. Password protection additionally replaces the file content
// with an encrypted envelope; every in-place rewrite goes through a
// temporary file so a failed operation never corrupts the original.
package protection

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

// signatureMarker prefixes the visible signature paragraph appended on
// signing. Paragraphs carrying it are excluded from content hashing.
const signatureMarker = "Digitally signed by"

// Signature records one digital signature over the document content.
type Signature struct {
	ID          string    `json:"id"`
	Signer      string    `json:"signer"`
	Reason      string    `json:"reason,omitempty"`
	ContentHash string    `json:"content_hash"`
	SignedAt    time.Time `json:"signed_at"`
}

// Restrictions records a restricted-editing grant.
type Restrictions struct {
	PasswordHash     string   `json:"password_hash"`
	EditableSections []string `json:"editable_sections,omitempty"`
}

// Metadata is the sidecar protection record for one document.
type Metadata struct {
	Version      int            `json:"version"`
	Encrypted    bool           `json:"encrypted"`
	PasswordHash string         `json:"password_hash,omitempty"`
	Restrictions *Restrictions  `json:"restrictions,omitempty"`
	Signatures   []Signature    `json:"signatures,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// MetadataPath returns the sidecar path for a document path.
func MetadataPath(docPath string) string {
	return strings.TrimSuffix(docPath, docx.Extension) + ".protection"
}

// LoadMetadata reads the sidecar. A missing sidecar yields an empty record
// and no error.
func LoadMetadata(docPath string) (*Metadata, error) {
	b, err := os.ReadFile(MetadataPath(docPath))
	if os.IsNotExist(err) {
		return &Metadata{Version: 1}, nil
	}
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, worderr.Wrap(worderr.KindDocumentProcessing, err, "corrupt protection metadata")
	}
	return &m, nil
}

func saveMetadata(docPath string, m *Metadata) error {
	m.Version = 1
	m.UpdatedAt = time.Now().UTC()
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(MetadataPath(docPath), b, 0o600)
}

// IsEncrypted reports whether the document content is currently an
// encrypted envelope.
func IsEncrypted(docPath string) bool {
	m, err := LoadMetadata(docPath)
	return err == nil && m.Encrypted
}

// Protect password-protects the document by encrypting its content. It
// fails when the document is already protected.
func Protect(docPath, password string) error {
	if password == "" {
		return worderr.Validation("password must not be empty")
	}
	m, err := LoadMetadata(docPath)
	if err != nil {
		return err
	}
	if m.Encrypted {
		return worderr.Validation("document is already password protected")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := encryptFile(docPath, password); err != nil {
		return worderr.Wrap(worderr.KindFileOperation, err, "encrypting document")
	}

	m.Encrypted = true
	m.PasswordHash = hash
	if err := saveMetadata(docPath, m); err != nil {
		// Roll the content back so the sidecar and the file agree.
		if derr := decryptFile(docPath, password); derr != nil {
			return worderr.Wrap(worderr.KindFileOperation, err,
				"saving protection metadata (manual recovery required, rollback failed: %v)", derr)
		}
		return worderr.Wrap(worderr.KindFileOperation, err, "saving protection metadata")
	}
	return nil
}

// Unprotect verifies the password and restores the plain document content.
func Unprotect(docPath, password string) error {
	m, err := LoadMetadata(docPath)
	if err != nil {
		return err
	}
	if !m.Encrypted {
		return worderr.Validation("document is not password protected")
	}
	if !verifyPassword(m.PasswordHash, password) {
		return worderr.New(worderr.KindPermissionDenied, "incorrect password")
	}
	if err := decryptFile(docPath, password); err != nil {
		return worderr.Wrap(worderr.KindFileOperation, err, "decrypting document")
	}

	m.Encrypted = false
	m.PasswordHash = ""
	return saveMetadata(docPath, m)
}

// RestrictEditing marks the document as restricted, with an optional list of
// sections that remain editable. The document content stays readable.
func RestrictEditing(docPath, password string, editableSections []string) error {
	if password == "" {
		return worderr.Validation("password must not be empty")
	}
	m, err := LoadMetadata(docPath)
	if err != nil {
		return err
	}
	if m.Encrypted {
		return worderr.Validation("cannot restrict an encrypted document; unprotect it first")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	m.Restrictions = &Restrictions{
		PasswordHash:     hash,
		EditableSections: editableSections,
	}
	return saveMetadata(docPath, m)
}

// Sign computes a content hash over the document text, records it in the
// sidecar, and appends a visible signature paragraph.
func Sign(docPath, signer, reason string) (*Signature, error) {
	if signer == "" {
		return nil, worderr.Validation("signer name must not be empty")
	}
	m, err := LoadMetadata(docPath)
	if err != nil {
		return nil, err
	}
	if m.Encrypted {
		return nil, worderr.Validation("cannot sign an encrypted document; unprotect it first")
	}

	doc, err := docx.Open(docPath)
	if err != nil {
		return nil, err
	}

	sig := Signature{
		ID:          uuid.NewString(),
		Signer:      signer,
		Reason:      reason,
		ContentHash: contentHash(doc),
		SignedAt:    time.Now().UTC(),
	}

	line := fmt.Sprintf("%s %s on %s", signatureMarker, signer, sig.SignedAt.Format("2006-01-02 15:04"))
	if reason != "" {
		line += fmt.Sprintf(" (%s)", reason)
	}
	p := doc.AddParagraph(line)
	for _, r := range p.Runs {
		r.Italic = true
	}
	if err := doc.Save(docPath); err != nil {
		return nil, worderr.Wrap(worderr.KindFileOperation, err, "saving signed document")
	}

	m.Signatures = append(m.Signatures, sig)
	if err := saveMetadata(docPath, m); err != nil {
		return nil, err
	}
	return &sig, nil
}

// VerifyResult reports the protection and integrity state of a document.
type VerifyResult struct {
	Protected       bool   `json:"protected"`
	Encrypted       bool   `json:"encrypted"`
	Restricted      bool   `json:"restricted"`
	SignatureCount  int    `json:"signature_count"`
	SignaturesValid bool   `json:"signatures_valid"`
	Detail          string `json:"detail,omitempty"`
}

// Verify checks the sidecar state and, for signed documents, recomputes the
// content hash against every recorded signature.
func Verify(docPath string) (*VerifyResult, error) {
	m, err := LoadMetadata(docPath)
	if err != nil {
		return nil, err
	}
	res := &VerifyResult{
		Protected:      m.Encrypted || m.Restrictions != nil || len(m.Signatures) > 0,
		Encrypted:      m.Encrypted,
		Restricted:     m.Restrictions != nil,
		SignatureCount: len(m.Signatures),
	}
	if m.Encrypted {
		res.Detail = "content is encrypted; signatures cannot be checked until the document is unprotected"
		return res, nil
	}
	if len(m.Signatures) == 0 {
		return res, nil
	}

	doc, err := docx.Open(docPath)
	if err != nil {
		return nil, err
	}
	hash := contentHash(doc)
	res.SignaturesValid = true
	for _, sig := range m.Signatures {
		if sig.ContentHash != hash {
			res.SignaturesValid = false
			res.Detail = fmt.Sprintf("content changed after signature %s by %s", sig.ID, sig.Signer)
			break
		}
	}
	return res, nil
}

// CheckPassword verifies a password against the protection record: the
// encryption hash when present, otherwise the restriction hash. A document
// with no password on record accepts any password.
func CheckPassword(docPath, password string) (bool, error) {
	m, err := LoadMetadata(docPath)
	if err != nil {
		return false, err
	}
	switch {
	case m.PasswordHash != "":
		return verifyPassword(m.PasswordHash, password), nil
	case m.Restrictions != nil:
		return verifyPassword(m.Restrictions.PasswordHash, password), nil
	}
	return true, nil
}

// CheckRestrictionPassword reports whether the password matches the
// restricted-editing grant. An unrestricted document accepts any password.
func CheckRestrictionPassword(docPath, password string) (bool, error) {
	m, err := LoadMetadata(docPath)
	if err != nil {
		return false, err
	}
	if m.Restrictions == nil {
		return true, nil
	}
	return verifyPassword(m.Restrictions.PasswordHash, password), nil
}

// contentHash hashes the top-level paragraph text, skipping visible
// signature paragraphs so signing does not invalidate prior signatures.
func contentHash(doc *docx.Document) string {
	h := sha256.New()
	for _, p := range doc.Paragraphs() {
		text := p.Text()
		if strings.HasPrefix(text, signatureMarker) {
			continue
		}
		h.Write([]byte(text))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
