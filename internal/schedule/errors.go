package schedule

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is matched by every ConfigError.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ConfigError describes why a recurrence rule cannot be evaluated.
type ConfigError struct {
	ItemID string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration [%s]: %s: %s", e.ItemID, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

func configErr(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// WithItem stamps an item ID onto a ConfigError, leaving other errors alone.
func WithItem(err error, itemID string) error {
	var ce *ConfigError
	if errors.As(err, &ce) && ce.ItemID == "" {
		cp := *ce
		cp.ItemID = itemID
		return &cp
	}
	return err
}
