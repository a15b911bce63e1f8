package execcontext

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// RunContext carries the context and output streams of one command or
// request.
type RunContext struct {
	Context context.Context
	StdOut  io.Writer
	StdErr  io.Writer
}

// Background returns a RunContext writing to the process streams.
func Background() RunContext {
	return RunContext{
		Context: context.Background(),
		StdOut:  os.Stdout,
		StdErr:  os.Stderr,
	}
}

// Discard returns a RunContext that drops all output.
func Discard(ctx context.Context) RunContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return RunContext{
		Context: ctx,
		StdOut:  io.Discard,
		StdErr:  io.Discard,
	}
}

func (rc RunContext) Write(p []byte) (n int, err error) {
	return rc.StdOut.Write(p)
}

func (rc RunContext) Printf(format string, v ...any) {
	fmt.Fprintf(rc.StdOut, format, v...)
}

// Err returns the context error, if any.
func (rc RunContext) Err() error {
	if rc.Context == nil {
		return nil
	}
	return rc.Context.Err()
}

// Logger returns the logger attached to the context.
func (rc RunContext) Logger() *zerolog.Logger {
	return zerolog.Ctx(rc.Context)
}
