package domain

import "fmt"

// ParseError means the source is not valid Python. Fatal for the file.
type ParseError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %d:%d: %s", e.File, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("parse error in %s: %s", e.File, e.Msg)
}

// ModuleProcessingError is a failure confined to a single unit.
type ModuleProcessingError struct {
	Unit string
	Line int
	Err  error
}

func (e *ModuleProcessingError) Error() string {
	return fmt.Sprintf("processing unit %q (line %d): %v", e.Unit, e.Line, e.Err)
}

func (e *ModuleProcessingError) Unwrap() error {
	return e.Err
}

// CacheError is a failed cache read or write. Never fatal.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Msg
	}
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Msg)
}
