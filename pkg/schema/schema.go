// Package schema provides access to the dashboard API definitions. It lets
// third-party tools discover the JSON payloads, the HTTP endpoints and the
// metric vocabulary without running a server.
//
// Example usage:
//
//	out, err := schema.GetSchema()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, e := range out.Endpoints {
//		fmt.Printf("%s %s\n", e.Method, e.Path)
//	}
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/lacquerai/rankview/internal/dataset"
	internalSchema "github.com/lacquerai/rankview/internal/schema"
	"github.com/lacquerai/rankview/internal/server"
)

// SchemaOutput is the complete description of the dashboard API.
type SchemaOutput struct {
	// Schema holds one JSON Schema per payload type, keyed by snake_case
	// type name.
	Schema json.RawMessage `json:"schema"`
	// Endpoints lists the HTTP routes served by the dashboard.
	Endpoints []server.Endpoint `json:"endpoints"`
	// Metrics is the default metric vocabulary.
	Metrics []string `json:"metrics"`
	// Identifier is the default identifier column.
	Identifier string `json:"identifier"`
}

// GetSchema compiles the payload schemas and route table.
func GetSchema() (*SchemaOutput, error) {
	schemaBytes, err := internalSchema.NewSchema()
	if err != nil {
		return nil, fmt.Errorf("error creating payload schema: %w", err)
	}

	metrics := make([]string, len(dataset.Vocabulary))
	copy(metrics, dataset.Vocabulary)

	return &SchemaOutput{
		Schema:     json.RawMessage(schemaBytes),
		Endpoints:  server.Endpoints(),
		Metrics:    metrics,
		Identifier: dataset.DefaultIdentifier,
	}, nil
}
