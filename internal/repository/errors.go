package repository

import "errors"

// Common repository errors
var (
	ErrTableNotFound = errors.New("table definition not found")
	ErrTableExists   = errors.New("table definition already exists")
	ErrInvalidUUID   = errors.New("invalid UUID format")
)
