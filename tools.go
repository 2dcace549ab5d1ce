//go:build tools

package tools

// This file tracks versions of CLI tool dependencies.
// It is not compiled into the binary.
//
// goose applies the SQL migrations under migrations/:
//
//	go tool goose -dir migrations postgres "$DATABASE_DSN" up
