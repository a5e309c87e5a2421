package models

import "errors"

// ErrDuplicate is returned by repositories when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")
