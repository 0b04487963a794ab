package cloud

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

type memObject struct {
	modified time.Time
	etag     string
	data     []byte
}

// Memory is an in-process Transport shared by every device of a test or a
// local demo. It honors conditional writes the same way the object store does.
type Memory struct {
	objects map[string]memObject
	fail    map[string][]error // ошибки, которые вернет следующий вызов операции
	mu      sync.Mutex
	offline bool
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]memObject),
		fail:    make(map[string][]error),
	}
}

// SetOffline makes every call fail with ErrOffline until reset
func (m *Memory) SetOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

// FailNext queues errors returned by the next calls of op ("put", "get", "list", "delete").
func (m *Memory) FailNext(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[op] = append(m.fail[op], errs...)
}

// Len returns the number of stored objects
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *Memory) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.offline {
		return ErrOffline
	}
	if q := m.fail[op]; len(q) > 0 {
		err := q[0]
		m.fail[op] = q[1:]
		return err
	}
	return nil
}

// Put stores data at path
func (m *Memory) Put(ctx context.Context, path string, data []byte, opts PutOptions) (ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "put"); err != nil {
		return ObjectInfo{}, err
	}

	cur, exists := m.objects[path]
	if opts.IfNoneMatch && exists {
		return ObjectInfo{}, ErrPreconditionFailed
	}
	if opts.IfMatch != "" && (!exists || cur.etag != opts.IfMatch) {
		return ObjectInfo{}, ErrPreconditionFailed
	}

	sum := md5.Sum(data)
	obj := memObject{
		data:     append([]byte(nil), data...),
		etag:     hex.EncodeToString(sum[:]),
		modified: time.Now().UTC(),
	}
	m.objects[path] = obj

	return obj.info(path), nil
}

// Get returns the object at path
func (m *Memory) Get(ctx context.Context, path string) ([]byte, ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "get"); err != nil {
		return nil, ObjectInfo{}, err
	}

	obj, ok := m.objects[path]
	if !ok {
		return nil, ObjectInfo{}, ErrNotFound
	}
	return append([]byte(nil), obj.data...), obj.info(path), nil
}

// List returns objects under prefix sorted by path
func (m *Memory) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "list"); err != nil {
		return nil, err
	}

	var out []ObjectInfo
	for p, obj := range m.objects {
		if strings.HasPrefix(p, prefix) {
			out = append(out, obj.info(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Delete removes the object at path
func (m *Memory) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "delete"); err != nil {
		return err
	}
	if _, ok := m.objects[path]; !ok {
		return ErrNotFound
	}
	delete(m.objects, path)
	return nil
}

func (o memObject) info(path string) ObjectInfo {
	return ObjectInfo{
		Path:         path,
		Size:         int64(len(o.data)),
		ETag:         o.etag,
		LastModified: o.modified,
	}
}
