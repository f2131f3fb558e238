package models

import "errors"

// Storage-level sentinels shared by repositories and services.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)
