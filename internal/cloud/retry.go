package cloud

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// DefaultMaxRetries число повторов временных ошибок
	DefaultMaxRetries = 4
	// DefaultRetryBase начальная задержка экспоненциального backoff
	DefaultRetryBase = 200 * time.Millisecond
)

// Retrying retries calls of the wrapped Transport that fail with ErrTransient.
// Other errors are returned at once.
type Retrying struct {
	next       Transport
	logger     *slog.Logger
	onRetry    func(op string)
	base       time.Duration
	maxRetries uint64
}

// RetryOption настраивает Retrying
type RetryOption func(*Retrying)

// WithMaxRetries sets the number of retries after the first attempt
func WithMaxRetries(n uint64) RetryOption {
	return func(r *Retrying) { r.maxRetries = n }
}

// WithBase sets the initial backoff delay
func WithBase(d time.Duration) RetryOption {
	return func(r *Retrying) {
		if d > 0 {
			r.base = d
		}
	}
}

// WithOnRetry registers a callback invoked before every retry
func WithOnRetry(fn func(op string)) RetryOption {
	return func(r *Retrying) { r.onRetry = fn }
}

// NewRetrying wraps next
func NewRetrying(next Transport, logger *slog.Logger, opts ...RetryOption) *Retrying {
	r := &Retrying{
		next:       next,
		logger:     logger,
		base:       DefaultRetryBase,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retrying) backoff() retry.Backoff {
	b := retry.NewExponential(r.base)
	b = retry.WithJitterPercent(20, b)
	return retry.WithMaxRetries(r.maxRetries, b)
}

func (r *Retrying) do(ctx context.Context, op, path string, fn func(ctx context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		if attempt > 0 {
			r.logger.Debug("retrying remote call", "op", op, "path", path, "attempt", attempt)
			if r.onRetry != nil {
				r.onRetry(op)
			}
		}
		attempt++

		err := fn(ctx)
		if errors.Is(err, ErrTransient) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// Put implements Transport
func (r *Retrying) Put(ctx context.Context, path string, data []byte, opts PutOptions) (ObjectInfo, error) {
	var info ObjectInfo
	err := r.do(ctx, "put", path, func(ctx context.Context) error {
		var err error
		info, err = r.next.Put(ctx, path, data, opts)
		return err
	})
	return info, err
}

// Get implements Transport
func (r *Retrying) Get(ctx context.Context, path string) ([]byte, ObjectInfo, error) {
	var (
		data []byte
		info ObjectInfo
	)
	err := r.do(ctx, "get", path, func(ctx context.Context) error {
		var err error
		data, info, err = r.next.Get(ctx, path)
		return err
	})
	return data, info, err
}

// List implements Transport
func (r *Retrying) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	err := r.do(ctx, "list", prefix, func(ctx context.Context) error {
		var err error
		out, err = r.next.List(ctx, prefix)
		return err
	})
	return out, err
}

// Delete implements Transport
func (r *Retrying) Delete(ctx context.Context, path string) error {
	return r.do(ctx, "delete", path, func(ctx context.Context) error {
		return r.next.Delete(ctx, path)
	})
}
