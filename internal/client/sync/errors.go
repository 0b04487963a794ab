package sync

import "errors"

var (
	// ErrIncompatibleVersion версия приложения не подходит группе
	ErrIncompatibleVersion = errors.New("app version incompatible with group")
	// ErrPermissionDenied роль участника не позволяет действие
	ErrPermissionDenied = errors.New("permission denied")
	// ErrEncryptionKeyRequired группа шифрует объекты, а ключ не настроен
	ErrEncryptionKeyRequired = errors.New("group encryption key required")
	// ErrShareCodesDisabled сервис кодов приглашения не настроен
	ErrShareCodesDisabled = errors.New("share codes are not configured")
)
