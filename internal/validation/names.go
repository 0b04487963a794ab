package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxNameLen максимальная длина имени группы, участника, песни или устройства
	MaxNameLen = 128
	// ShareCodeLen длина кода приглашения
	ShareCodeLen = 8
)

// ShareCodeAlphabet символы кода приглашения.
// Без 0/O и 1/I, чтобы код можно было продиктовать.
const ShareCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ShareCodePattern формат кода приглашения
var ShareCodePattern = regexp.MustCompile(`^[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{8}$`)

// ValidateName проверяет отображаемое имя (группа, участник, песня, устройство).
// what используется в тексте ошибки.
func ValidateName(what, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%s name cannot be empty", what)
	}

	if !utf8.ValidString(name) {
		return fmt.Errorf("%s name must be valid UTF-8", what)
	}

	if utf8.RuneCountInString(trimmed) > MaxNameLen {
		return fmt.Errorf("%s name must not exceed %d characters", what, MaxNameLen)
	}

	return nil
}

// ValidateEntityID проверяет, что идентификатор сущности назначен при создании (UUID)
func ValidateEntityID(id string) error {
	if id == "" {
		return fmt.Errorf("entity id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("entity id %q is not a UUID: %w", id, err)
	}
	return nil
}

// NormalizeShareCode приводит введенный пользователем код к каноническому виду:
// верхний регистр, без пробелов и дефисов
func NormalizeShareCode(code string) string {
	code = strings.ToUpper(code)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, code)
}

// ValidateShareCode проверяет формат кода приглашения
func ValidateShareCode(code string) error {
	if code == "" {
		return fmt.Errorf("share code cannot be empty")
	}
	if !ShareCodePattern.MatchString(code) {
		return fmt.Errorf("share code must be %d characters from %s", ShareCodeLen, ShareCodeAlphabet)
	}
	return nil
}
