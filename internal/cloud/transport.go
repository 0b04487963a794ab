// Package cloud abstracts the shared folder every device of a group syncs
// through. Objects are addressed by slash-separated paths; each stored
// object carries an opaque version tag (ETag) used for conditional writes.
package cloud

import (
	"context"
	"errors"
	"time"
)

//go:generate moq -out transport_mock.go . Transport

var (
	// ErrNotFound объект отсутствует
	ErrNotFound = errors.New("object not found")
	// ErrPreconditionFailed условная запись отклонена (ETag изменился)
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrAuthenticationRequired учетные данные отсутствуют или отклонены
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrOffline удаленное хранилище недоступно по сети
	ErrOffline = errors.New("remote storage unreachable")
	// ErrTransient временная ошибка, запрос можно повторить
	ErrTransient = errors.New("transient remote error")
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	LastModified time.Time
	Path         string
	ETag         string
	Size         int64
}

// PutOptions makes a write conditional.
// IfMatch: write only if the current ETag equals it.
// IfNoneMatch: write only if the object does not exist.
type PutOptions struct {
	IfMatch     string
	IfNoneMatch bool
}

// Transport is the remote object store of a group folder
type Transport interface {
	Put(ctx context.Context, path string, data []byte, opts PutOptions) (ObjectInfo, error)
	Get(ctx context.Context, path string) ([]byte, ObjectInfo, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, path string) error
}
