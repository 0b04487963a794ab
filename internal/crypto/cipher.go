package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	// NonceSize - размер nonce для AES-GCM (12 bytes стандартный размер)
	NonceSize = 12
	// KeySize - размер ключа группы (AES-256)
	KeySize = 32
)

// blobMagic префикс зашифрованных объектов в облаке.
// По нему отличаем зашифрованные снапшоты от открытых (группы без шифрования).
var blobMagic = []byte("BSE1")

// ErrDecrypt возвращается, если объект поврежден или ключ не подходит
var ErrDecrypt = errors.New("failed to decrypt blob")

// BlobCipher шифрует снапшоты сущностей и файлы перед загрузкой в облако.
// Формат: magic (4 bytes) + nonce (12 bytes) + ciphertext + auth_tag (16 bytes)
type BlobCipher struct {
	aead cipher.AEAD
}

// NewBlobCipher создает шифр из 32-байтного ключа группы
func NewBlobCipher(key []byte) (*BlobCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &BlobCipher{aead: aead}, nil
}

// Seal шифрует blob. Путь объекта передается как associated data,
// чтобы нельзя было подменить один объект другим.
func (c *BlobCipher) Seal(path string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(blobMagic)+NonceSize+len(plaintext)+c.aead.Overhead())
	out = append(out, blobMagic...)
	out = append(out, nonce...)
	return c.aead.Seal(out, nonce, plaintext, []byte(path)), nil
}

// Open расшифровывает blob, созданный Seal.
// Незашифрованные данные (без magic) возвращаются как есть.
func (c *BlobCipher) Open(path string, data []byte) ([]byte, error) {
	if !IsSealed(data) {
		return data, nil
	}

	body := data[len(blobMagic):]
	if len(body) < NonceSize {
		return nil, fmt.Errorf("%w: data too short", ErrDecrypt)
	}

	plaintext, err := c.aead.Open(nil, body[:NonceSize], body[NonceSize:], []byte(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	return plaintext, nil
}

// IsSealed проверяет, зашифрован ли blob
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, blobMagic)
}
