package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/storefront-api/internal/repository"
)

// Error taxonomy shared by the service layer.  Handlers translate these
// into HTTP responses with errors.Is.
var (
	ErrDuplicateEmail     = errors.New("existing user found with same email address")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrNotFound           = errors.New("not found")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrTimeout            = errors.New("store call timed out")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")

	// ErrPasswordTooLong is also an ErrInvalidInput.
	ErrPasswordTooLong = fmt.Errorf("%w: password longer than %d bytes", ErrInvalidInput, maxPasswordBytes)
)

// storeError classifies an error returned by a store call made under ctx.
func storeError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrEmailExists):
		return fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
	case errors.Is(err, repository.ErrProductExists):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
}

// call runs fn with a bounded deadline and classifies its error.  It never
// retries: cart mutations are not idempotent.
func call[T any](ctx context.Context, timeout time.Duration, op string, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	v, err := fn(cctx)
	if err != nil {
		return v, storeError(cctx, op, err)
	}
	return v, nil
}

// exec is call for store operations without a result.
func exec(ctx context.Context, timeout time.Duration, op string, fn func(context.Context) error) error {
	_, err := call(ctx, timeout, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
