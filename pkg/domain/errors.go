package domain

import "errors"

// ErrNoDocument is returned when extraction is attempted without a usable document.
var ErrNoDocument = errors.New("no openapi document")
