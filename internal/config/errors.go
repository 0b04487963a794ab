package config

import "errors"

// ErrInvalidConfig конфигурация не читается или содержит недопустимые значения
var ErrInvalidConfig = errors.New("invalid configuration")
