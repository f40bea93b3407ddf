package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"rescue-console/internal/model"
)

const (
	sealVersion   = 1
	sealSaltBytes = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var sealAdditionalData = []byte("rescue-console/local-storage")

type sealedFile struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// sealer encrypts the local storage file at rest with XChaCha20-Poly1305.
// The key is derived from the passphrase with argon2id and a per-file salt.
type sealer struct {
	salt []byte
	aead cipher.AEAD
}

func newSealer(passphrase string, salt []byte) (*sealer, error) {
	if len(salt) == 0 {
		salt = make([]byte, sealSaltBytes)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
	}

	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	return &sealer{salt: salt, aead: aead}, nil
}

func (s *sealer) seal(plain []byte) (sealedFile, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return sealedFile{}, fmt.Errorf("generate nonce: %w", err)
	}

	return sealedFile{
		Version:    sealVersion,
		Salt:       s.salt,
		Nonce:      nonce,
		Ciphertext: s.aead.Seal(nil, nonce, plain, sealAdditionalData),
	}, nil
}

func (s *sealer) open(f sealedFile) ([]byte, error) {
	if f.Version != sealVersion {
		return nil, fmt.Errorf("%w: unsupported seal version %d", model.ErrStorageCorrupt, f.Version)
	}
	if len(f.Nonce) != s.aead.NonceSize() {
		return nil, fmt.Errorf("%w: bad nonce length", model.ErrStorageCorrupt)
	}

	plain, err := s.aead.Open(nil, f.Nonce, f.Ciphertext, sealAdditionalData)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot unseal (wrong passphrase?)", model.ErrStorageCorrupt)
	}

	return plain, nil
}
