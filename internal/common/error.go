package common

import "errors"

// Repository-level errors.
var ErrorNotFound = errors.New("not found")
