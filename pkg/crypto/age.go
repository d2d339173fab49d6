// Package crypto implements the Decryptor capability that pkg/content
// consumes, backed by filippo.io/age. The core never sees key material
// directly; this package is the one concrete adapter, grounded on the
// identity/recipient model of the age crate the original implementation
// used.
package crypto

import (
	"bytes"
	"io"

	"filippo.io/age"

	"github.com/PaulYuuu/guisu/pkg/errors"
)

// AgeDecryptor decrypts age-encrypted content against a set of
// identities, trying each in turn and succeeding if any one works, per
// spec.md §4.2's Decryptor contract.
type AgeDecryptor struct {
	identities []age.Identity
}

// NewAgeDecryptor builds a decryptor from one or more age identities
// (X25519 identities, or passphrase-derived scrypt identities).
func NewAgeDecryptor(identities ...age.Identity) *AgeDecryptor {
	return &AgeDecryptor{identities: identities}
}

// ParseIdentities parses identity strings in the standard age identity
// file format (one AGE-SECRET-KEY-1... per line).
func ParseIdentities(r io.Reader) ([]age.Identity, error) {
	ids, err := age.ParseIdentities(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDecryption, "parse age identities")
	}
	return ids, nil
}

// Decrypt implements content.Decryptor. All configured identities are
// offered to age.Decrypt; age itself tries each recipient stanza against
// each identity, so a single call covers the "try multiple identities"
// requirement.
func (d *AgeDecryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(d.identities) == 0 {
		return nil, errors.New(errors.ErrDecryption, "no identities configured")
	}
	r, err := age.Decrypt(bytes.NewReader(ciphertext), d.identities...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDecryption, "decrypt age ciphertext: all identities failed")
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDecryption, "read decrypted age plaintext")
	}
	return plaintext, nil
}

// AgeEncryptor is the symmetric out-of-core helper for producing fixtures
// and for the caller-side "encrypt before commit" workflow; the core
// itself only ever decrypts.
type AgeEncryptor struct {
	recipients []age.Recipient
}

// NewAgeEncryptor builds an encryptor from one or more age recipients.
func NewAgeEncryptor(recipients ...age.Recipient) *AgeEncryptor {
	return &AgeEncryptor{recipients: recipients}
}

// Encrypt produces age ciphertext for plaintext, addressed to all
// configured recipients.
func (e *AgeEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	if len(e.recipients) == 0 {
		return nil, errors.New(errors.ErrDecryption, "no recipients configured")
	}
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, e.recipients...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDecryption, "open age encryption stream")
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, errors.Wrap(err, errors.ErrDecryption, "write age plaintext")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrDecryption, "close age encryption stream")
	}
	return buf.Bytes(), nil
}
