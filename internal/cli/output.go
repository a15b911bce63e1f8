package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lacquerai/rankview/internal/dataset"
	"github.com/lacquerai/rankview/internal/engine"
	"github.com/lacquerai/rankview/internal/execcontext"
	"github.com/lacquerai/rankview/internal/style"
	pkgEvents "github.com/lacquerai/rankview/pkg/events"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// printResult writes data in the selected output format, falling back to
// text for anything other than json or yaml.
func printResult(w io.Writer, data any, text func(io.Writer) error) error {
	switch viper.GetString("output") {
	case "json":
		style.PrintJSON(w, data)
	case "yaml":
		style.PrintYAML(w, data)
	default:
		return text(w)
	}
	return nil
}

// isText reports whether decorated human output is wanted.
func isText() bool {
	format := viper.GetString("output")
	return format != "json" && format != "yaml"
}

// printFailure prints err together with the suggestion and column list a
// schema error carries.
func printFailure(w io.Writer, err error) {
	style.Error(w, firstLine(err.Error()))
	if suggestion := suggestionOf(err); suggestion != "" {
		fmt.Fprintf(w, "  %s\n", style.RenderSuggestion(suggestion))
	}

	var schemaErr *dataset.SchemaError
	if errors.As(err, &schemaErr) && len(schemaErr.Columns) > 0 {
		fmt.Fprintf(w, "  %s %s\n", style.MutedStyle.Render("columns:"), strings.Join(schemaErr.Columns, ", "))
	}
}

// newRunContext binds a run context to the command's streams.
func newRunContext(cmd *cobra.Command) execcontext.RunContext {
	return execcontext.RunContext{
		Context: cmd.Context(),
		StdOut:  cmd.OutOrStdout(),
		StdErr:  cmd.ErrOrStderr(),
	}
}

// newRunner builds a runner from the identifier, top and labels settings.
func newRunner(listener pkgEvents.Listener) *engine.Runner {
	config := engine.DefaultConfig()
	if id := viper.GetString("identifier"); id != "" {
		config.Identifier = id
	}
	if n := viper.GetInt("top"); n > 0 {
		config.N = n
	}
	config.Labels = viper.GetBool("labels")

	return engine.NewRunner(listener, engine.WithConfig(config))
}

// suggestionOf returns the hint carried by a schema error, if any.
func suggestionOf(err error) string {
	var schemaErr *dataset.SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Suggestion
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
