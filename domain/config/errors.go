package config

import "errors"

var (
	errInvalidDepth   = errors.New("traversal depth limits must be at least 1")
	errEmptyBaseState = errors.New("base state name cannot be empty")
)
