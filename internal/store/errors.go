package store

import "errors"

// ErrInvalidSlug is returned when a favorites call receives an empty or
// whitespace-only slug.
var ErrInvalidSlug = errors.New("invalid slug")
