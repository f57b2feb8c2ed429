package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors callers branch on with errors.Is. Producers wrap them
// with %w and attach the offending name or path.
var (
	ErrUnknownModelConfig      = errors.New("unknown model configuration")
	ErrUnknownFileTypes        = errors.New("unknown file type set")
	ErrDirectoryNotFound       = errors.New("data directory not found")
	ErrNoIndexLoaded           = errors.New("no index loaded")
	ErrUnsupportedResponseMode = errors.New("unsupported response mode")
	ErrCollectionNotFound      = errors.New("collection not found")
)

// ProviderError marks a failure that originated in an embedding or LLM
// provider or in the vector store, as opposed to a configuration or
// precondition problem in this program.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// WrapProvider wraps err as a ProviderError unless it is nil, already a
// ProviderError, or one of the sentinel errors above.
func WrapProvider(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	for _, sentinel := range []error{
		ErrUnknownModelConfig, ErrUnknownFileTypes, ErrDirectoryNotFound,
		ErrNoIndexLoaded, ErrUnsupportedResponseMode, ErrCollectionNotFound,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &ProviderError{Op: op, Err: err}
}
