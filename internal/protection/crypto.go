package protection

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

// envelopeMagic identifies an encrypted document envelope. It deliberately
// does not collide with the zip magic so an encrypted file never parses as
// a package.
var envelopeMagic = []byte("WMCPENC1")

const (
	saltLen = 16
	keyLen  = 32

	// argon2id parameters
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// hashPassword produces a self-describing argon2id hash string:
// argon2id$<base64 salt>$<base64 hash>.
func hashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	sum := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLen)
	return fmt.Sprintf("argon2id$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum)), nil
}

// verifyPassword checks a password against an encoded hash in constant time.
func verifyPassword(encoded, password string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != "argon2id" {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLen)
}

// encryptFile replaces the file content with an encrypted envelope:
// magic || salt || nonce || AES-GCM ciphertext. The rewrite is atomic.
func encryptFile(path, password string) error {
	plain, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	out := make([]byte, 0, len(envelopeMagic)+saltLen+len(nonce)+len(plain)+gcm.Overhead())
	out = append(out, envelopeMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plain, nil)

	return writeAtomic(path, out)
}

// decryptFile restores the plain content from an encrypted envelope. A
// wrong password surfaces as permission_denied; GCM authentication also
// protects against a tampered envelope.
func decryptFile(path, password string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(blob) < len(envelopeMagic)+saltLen || string(blob[:len(envelopeMagic)]) != string(envelopeMagic) {
		return worderr.Processing("file is not an encrypted document envelope")
	}
	rest := blob[len(envelopeMagic):]
	salt := rest[:saltLen]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return err
	}
	rest = rest[saltLen:]
	if len(rest) < gcm.NonceSize() {
		return worderr.Processing("encrypted envelope is truncated")
	}
	nonce, ct := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return worderr.New(worderr.KindPermissionDenied, "incorrect password or corrupted envelope")
	}
	return writeAtomic(path, plain)
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// writeAtomic writes via a temporary file in the same directory and renames
// over the destination.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".protect-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// IsEnvelope reports whether the file starts with the encrypted envelope
// magic. It reads only the header.
func IsEnvelope(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	header := make([]byte, len(envelopeMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		// Shorter than the magic: not an envelope.
		return false, nil
	}
	return string(header) == string(envelopeMagic), nil
}
