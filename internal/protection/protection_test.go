package protection

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

func writeDoc(t *testing.T, dir, name string, paragraphs ...string) string {
	t.Helper()
	doc := docx.New()
	for _, p := range paragraphs {
		doc.AddParagraph(p)
	}
	path := filepath.Join(dir, name)
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

func TestProtectUnprotect_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "secret.docx", "confidential content")
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := Protect(path, "hunter2"); err != nil {
		t.Fatalf("Protect: %v", err)
	}

	if env, _ := IsEnvelope(path); !env {
		t.Fatal("expected encrypted envelope on disk")
	}
	if !IsEncrypted(path) {
		t.Fatal("expected sidecar to record encryption")
	}
	if _, err := docx.Open(path); err == nil {
		t.Fatal("encrypted file must not open as a document")
	}

	if err := Unprotect(path, "hunter2"); err != nil {
		t.Fatalf("Unprotect: %v", err)
	}
	restored, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(restored) != string(original) {
		t.Fatal("expected byte-identical content after unprotect")
	}
	if IsEncrypted(path) {
		t.Fatal("sidecar must clear the encrypted flag")
	}
}

func TestProtect_Twice(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.docx", "x")
	if err := Protect(path, "pw"); err != nil {
		t.Fatal(err)
	}
	err := Protect(path, "pw")
	if err == nil {
		t.Fatal("expected error protecting twice")
	}
	var tagged *worderr.Error
	if !errors.As(err, &tagged) || tagged.Kind != worderr.KindValidation {
		t.Fatalf("expected validation kind; got %v", err)
	}
}

func TestUnprotect_WrongPassword(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.docx", "x")
	if err := Protect(path, "correct"); err != nil {
		t.Fatal(err)
	}

	err := Unprotect(path, "wrong")
	if err == nil {
		t.Fatal("expected wrong-password failure")
	}
	var tagged *worderr.Error
	if !errors.As(err, &tagged) || tagged.Kind != worderr.KindPermissionDenied {
		t.Fatalf("expected permission_denied; got %v", err)
	}

	// The envelope must survive the failed attempt untouched.
	if env, _ := IsEnvelope(path); !env {
		t.Fatal("failed unprotect must leave the envelope in place")
	}
	if err := Unprotect(path, "correct"); err != nil {
		t.Fatalf("correct password must still work: %v", err)
	}
}

func TestUnprotect_NotProtected(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.docx", "x")
	if err := Unprotect(path, "pw"); err == nil {
		t.Fatal("expected error unprotecting a plain document")
	}
}

func TestRestrictEditing(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.docx", "body")

	if err := RestrictEditing(path, "editors", []string{"intro", "appendix"}); err != nil {
		t.Fatalf("RestrictEditing: %v", err)
	}

	// Content stays a readable document.
	if _, err := docx.Open(path); err != nil {
		t.Fatalf("restricted document must remain readable: %v", err)
	}

	ok, err := CheckRestrictionPassword(path, "editors")
	if err != nil || !ok {
		t.Fatalf("expected matching restriction password; ok=%v err=%v", ok, err)
	}
	ok, _ = CheckRestrictionPassword(path, "other")
	if ok {
		t.Fatal("expected mismatched restriction password to fail")
	}

	m, err := LoadMetadata(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Restrictions == nil || len(m.Restrictions.EditableSections) != 2 {
		t.Fatalf("expected editable sections recorded; got %+v", m.Restrictions)
	}
}

func TestSignAndVerify(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.docx", "agreement text")

	sig, err := Sign(path, "Alex Doe", "approval")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig.ID == "" || sig.ContentHash == "" {
		t.Fatalf("incomplete signature: %+v", sig)
	}

	// The visible signature paragraph is appended.
	doc, err := docx.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	paras := doc.Paragraphs()
	last := paras[len(paras)-1].Text()
	if !strings.HasPrefix(last, "Digitally signed by Alex Doe") {
		t.Fatalf("expected signature paragraph; got %q", last)
	}

	res, err := Verify(path)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !res.Protected || res.SignatureCount != 1 || !res.SignaturesValid {
		t.Fatalf("expected valid signature; got %+v", res)
	}

	// A second signature over unchanged content stays valid because the
	// first signature paragraph is excluded from hashing.
	if _, err := Sign(path, "Kim Lee", ""); err != nil {
		t.Fatal(err)
	}
	res, err = Verify(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.SignatureCount != 2 || !res.SignaturesValid {
		t.Fatalf("expected both signatures valid; got %+v", res)
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.docx", "original wording")
	if _, err := Sign(path, "Alex Doe", ""); err != nil {
		t.Fatal(err)
	}

	doc, err := docx.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	doc.AddParagraph("inserted after signing")
	if err := doc.Save(path); err != nil {
		t.Fatal(err)
	}

	res, err := Verify(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.SignaturesValid {
		t.Fatal("expected tampering to invalidate the signature")
	}
	if res.Detail == "" {
		t.Fatal("expected a detail message naming the failed signature")
	}
}

func TestVerify_Unprotected(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.docx", "plain")
	res, err := Verify(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Protected || res.Encrypted || res.Restricted || res.SignatureCount != 0 {
		t.Fatalf("expected clean state; got %+v", res)
	}
}

func TestPasswordHashing(t *testing.T) {
	h, err := hashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(h, "argon2id$") {
		t.Fatalf("unexpected hash format %q", h)
	}
	if !verifyPassword(h, "s3cret") {
		t.Fatal("expected password to verify")
	}
	if verifyPassword(h, "other") {
		t.Fatal("expected wrong password to fail")
	}
	if verifyPassword("garbage", "s3cret") {
		t.Fatal("expected malformed hash to fail closed")
	}

	h2, err := hashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if h == h2 {
		t.Fatal("expected per-hash random salt")
	}
}

func TestMetadataPath(t *testing.T) {
	if got := MetadataPath("/x/report.docx"); got != "/x/report.protection" {
		t.Fatalf("unexpected metadata path %q", got)
	}
}
