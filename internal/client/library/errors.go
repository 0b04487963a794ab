package library

import "errors"

var (
	// ErrWrongType сущность с таким ID имеет другой тип
	ErrWrongType = errors.New("entity has a different type")
	// ErrDeleted сущность удалена
	ErrDeleted = errors.New("entity is deleted")
)
