package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable is returned by writes while no remote store is
	// configured.
	ErrStoreUnavailable = errors.New("Database not available in local development mode")

	// ErrUnauthenticated is returned by identity-bound writes when nobody is
	// signed in.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrStoreFault wraps any remote store error other than not-found.
	ErrStoreFault = errors.New("store fault")
)

func fault(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreFault, err)
}
