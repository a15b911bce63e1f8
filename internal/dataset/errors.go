package dataset

import (
	"fmt"
	"strings"
)

// ErrorKind classifies user-facing failures of a single interaction.
type ErrorKind string

const (
	KindLoad   ErrorKind = "load"
	KindSchema ErrorKind = "schema"
	KindEmpty  ErrorKind = "empty_result"
)

// KindError is implemented by every user-facing error of the ranking pipeline.
type KindError interface {
	error
	Kind() ErrorKind
}

// LoadError is returned when the input cannot be parsed as a table
type LoadError struct {
	Source string
	Err    error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	return fmt.Sprintf("could not read %s as a table: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error   { return e.Err }
func (e *LoadError) Kind() ErrorKind { return KindLoad }

// SchemaError is returned when a table lacks the identifier column or carries
// none of the recognized metric columns.
type SchemaError struct {
	Source     string   `json:"source"`
	Message    string   `json:"message"`
	Columns    []string `json:"columns,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	var result strings.Builder

	result.WriteString(e.Message)
	if e.Source != "" {
		result.WriteString(fmt.Sprintf(" (%s)", e.Source))
	}

	if e.Suggestion != "" {
		result.WriteString(fmt.Sprintf("\nSuggestion: %s", e.Suggestion))
	}

	return result.String()
}

func (e *SchemaError) Kind() ErrorKind { return KindSchema }
