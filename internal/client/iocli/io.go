// Package iocli абстрагирует ввод-вывод команд CLI: вывод результатов
// и запрос строк и секретов у пользователя.
package iocli

//go:generate moq -out io_mock.go . IO

// IO ввод-вывод команды
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	// ReadInput читает строку; пробелы по краям отбрасываются
	ReadInput(prompt string) (string, error)
	// ReadPassword читает секрет без эха, если ввод идет с терминала
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
