// Package schema defines the JSON payloads of the dashboard API and generates
// their JSON schema.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/stoewer/go-strcase"
)

//go:embed types.go
var typesGoFile embed.FS

// Payloads are the API types a schema is generated for, keyed by name.
var Payloads = map[string]interface{}{
	"dataset_summary":  &DatasetSummary{},
	"ranking_response": &RankingResponse{},
	"error_response":   &ErrorResponse{},
	"health_response":  &HealthResponse{},
}

// CustomReflector documents schemas with the comments of the payload types.
type CustomReflector struct {
	*jsonschema.Reflector
}

// NewCustomReflector creates a reflector using snake_case keys and names.
func NewCustomReflector() *CustomReflector {
	r := &jsonschema.Reflector{
		KeyNamer: strcase.SnakeCase,
		Namer: func(t reflect.Type) string {
			return strcase.SnakeCase(t.Name())
		},
		ExpandedStruct: true,
	}

	return &CustomReflector{Reflector: r}
}

// Generate returns the schema of every payload type.
func Generate() (map[string]*jsonschema.Schema, error) {
	reflector := NewCustomReflector()
	if err := reflector.extractGoComments(reflect.TypeOf(DatasetSummary{}).PkgPath()); err != nil {
		return nil, err
	}

	schemas := make(map[string]*jsonschema.Schema, len(Payloads))
	for name, v := range Payloads {
		schemas[name] = reflector.Reflect(v)
	}
	return schemas, nil
}

// NewSchema returns the payload schemas as indented JSON.
func NewSchema() ([]byte, error) {
	schemas, err := Generate()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(schemas, "", "  ")
}

func (r *CustomReflector) extractGoComments(pkg string) error {
	commentMap := make(map[string]string)
	fset := token.NewFileSet()
	typesFile, err := typesGoFile.ReadFile("types.go")
	if err != nil {
		return err
	}

	f, err := parser.ParseFile(fset, "types.go", typesFile, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("parsing payload types: %w", err)
	}

	typ := ""
	ast.Inspect(f, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.GenDecl:
			// Single type declarations carry their doc on the GenDecl.
			if len(x.Specs) == 1 {
				if ts, ok := x.Specs[0].(*ast.TypeSpec); ok && ts.Name.IsExported() {
					commentMap[fmt.Sprintf("%s.%s", pkg, ts.Name)] = strings.TrimSpace(x.Doc.Text())
				}
			}
		case *ast.TypeSpec:
			typ = ""
			if x.Name.IsExported() {
				typ = x.Name.String()
			}
		case *ast.Field:
			txt := x.Doc.Text()
			if txt == "" {
				txt = x.Comment.Text()
			}
			if typ != "" && txt != "" {
				for _, n := range x.Names {
					if n.IsExported() {
						commentMap[fmt.Sprintf("%s.%s.%s", pkg, typ, n)] = strings.TrimSpace(txt)
					}
				}
			}
		}
		return true
	})

	r.CommentMap = commentMap

	return nil
}
