package crypto

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id для ключа группы
const (
	// Argon2Time - количество итераций (time cost)
	Argon2Time = 1
	// Argon2Memory - объем памяти в KB (64MB = 64*1024 KB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - количество параллельных потоков
	Argon2Threads = 4
	// SaltSize - размер соли в байтах
	SaltSize = 16
)

// DeriveGroupKey получает ключ шифрования группы из общей passphrase.
// Соль берется из groupID: все участники группы получают один и тот же ключ,
// а одна passphrase в разных группах дает разные ключи.
func DeriveGroupKey(passphrase, groupID string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("group id cannot be empty")
	}

	salt := groupSalt(groupID)
	key := argon2.IDKey([]byte(passphrase), salt, Argon2Time, Argon2Memory, Argon2Threads, KeySize)

	return key, nil
}

func groupSalt(groupID string) []byte {
	sum := sha256.Sum256([]byte("bandsync:group:" + groupID))
	return sum[:SaltSize]
}
