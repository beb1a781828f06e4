package domain

import "errors"

// ErrInvalidConfig is returned by value constructors when a configuration
// parameter cannot be used. Wrap it with fmt.Errorf to say which one.
var ErrInvalidConfig = errors.New("invalid configuration")
