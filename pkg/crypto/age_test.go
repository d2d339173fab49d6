package crypto

import (
	"testing"

	"filippo.io/age"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	enc := NewAgeEncryptor(id.Recipient())
	ciphertext, err := enc.Encrypt([]byte("h={{ hostname }}"))
	require.NoError(t, err)

	dec := NewAgeDecryptor(id)
	plaintext, err := dec.Decrypt(ciphertext)
	require.NoError(t, err)
	require.Equal(t, "h={{ hostname }}", string(plaintext))
}

func TestDecryptTriesMultipleIdentities(t *testing.T) {
	wrongID, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	rightID, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	enc := NewAgeEncryptor(rightID.Recipient())
	ciphertext, err := enc.Encrypt([]byte("secret"))
	require.NoError(t, err)

	dec := NewAgeDecryptor(wrongID, rightID)
	plaintext, err := dec.Decrypt(ciphertext)
	require.NoError(t, err)
	require.Equal(t, "secret", string(plaintext))
}

func TestDecryptAllIdentitiesFail(t *testing.T) {
	rightID, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	wrongID, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	enc := NewAgeEncryptor(rightID.Recipient())
	ciphertext, err := enc.Encrypt([]byte("secret"))
	require.NoError(t, err)

	dec := NewAgeDecryptor(wrongID)
	_, err = dec.Decrypt(ciphertext)
	require.Error(t, err)
}

func TestDecryptNoIdentitiesConfigured(t *testing.T) {
	dec := NewAgeDecryptor()
	_, err := dec.Decrypt([]byte("anything"))
	require.Error(t, err)
}
