package cli

import "errors"

var (
	// ErrNotLoggedIn облачное хранилище не настроено
	ErrNotLoggedIn = errors.New("not logged in, run 'bandsync login' first")
	// ErrUnknownGroup устройство не присоединено к группе
	ErrUnknownGroup = errors.New("unknown group")
	// ErrAmbiguousGroup несколько групп с одним именем
	ErrAmbiguousGroup = errors.New("ambiguous group name")
	// ErrEmptyPassphrase пустая passphrase группы
	ErrEmptyPassphrase = errors.New("passphrase cannot be empty")
	// ErrInvalidAction неизвестное решение конфликта
	ErrInvalidAction = errors.New("invalid resolution action")
)
