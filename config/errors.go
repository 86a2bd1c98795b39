package config

import "errors"

// Fatal configuration errors. A run that hits one of them cannot continue.
var (
	ErrOrdering       = errors.New("configuration command out of order")
	ErrMissingCommand = errors.New("missing configuration command")
	ErrLineTooLarge   = errors.New("cache line size is bigger than the size it divides")
	ErrInvalidValue   = errors.New("invalid configuration value")
	ErrReconfigure    = errors.New("configuration cannot change after the first access")
)

var fatalErrors = []error{
	ErrOrdering,
	ErrMissingCommand,
	ErrLineTooLarge,
	ErrInvalidValue,
	ErrReconfigure,
}

// IsFatal returns true if err is a configuration error.
func IsFatal(err error) bool {
	for _, e := range fatalErrors {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
