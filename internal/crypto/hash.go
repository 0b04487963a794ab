package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// TombstoneChecksum контрольная сумма удаленной сущности.
// Два устройства, независимо удалившие одну и ту же сущность, получают
// одинаковую сумму, поэтому такие изменения не считаются конфликтом.
var TombstoneChecksum = ChecksumBytes([]byte("bandsync:tombstone"))

// ChecksumBytes возвращает hex-encoded SHA256 от произвольных байтов.
// Используется для содержимого файлов (PDF, изображения).
func ChecksumBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Checksum вычисляет детерминированный хеш состояния сущности.
// Значение сериализуется в JSON, затем приводится к канонической форме
// (ключи объектов отсортированы, пробелы удалены), и только потом хешируется.
// Одинаковое состояние на разных устройствах дает одинаковую сумму.
func Checksum(v any) (string, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	return ChecksumBytes(canonical), nil
}

// Canonicalize возвращает каноническое JSON представление значения.
func Canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	// json.Number сохраняет числа без потери точности
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}

	// encoding/json сортирует ключи map при сериализации
	canonical, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal canonical state: %w", err)
	}

	return canonical, nil
}
