package engine

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/lacquerai/rankview/internal/style"
	pkgEvents "github.com/lacquerai/rankview/pkg/events"
)

// CLIProgressTracker shows a spinner for each load or ranking and replaces it
// with a success or error line when the operation finishes.
type CLIProgressTracker struct {
	mu      sync.Mutex
	writer  io.Writer
	spinner style.Spinner
	done    bool
}

// NewProgressTracker creates a tracker writing to writer.
func NewProgressTracker(writer io.Writer) *CLIProgressTracker {
	return &CLIProgressTracker{writer: writer}
}

// StartListening processes events until the channel is closed.
func (pt *CLIProgressTracker) StartListening(progressChan <-chan pkgEvents.Event) {
	pt.mu.Lock()
	pt.done = false
	pt.mu.Unlock()

	for event := range progressChan {
		switch event.Type {
		case pkgEvents.EventRankingStarted:
			pt.start(fmt.Sprintf(" Ranking %s by %s", style.AccentStyle.Render(event.Source), style.AccentStyle.Render(event.Metric)))
		case pkgEvents.EventRankingRendered:
			pt.finish(style.SuccessIcon(), fmt.Sprintf("Ranked top %d of %s by %s (%s)",
				event.Rows, event.Source, event.Metric, event.Duration.Round(time.Microsecond)))
		case pkgEvents.EventRankingFailed:
			pt.finish(style.ErrorIcon(), fmt.Sprintf("Could not rank %s by %s", event.Source, event.Metric))
		case pkgEvents.EventDatasetLoaded:
			pt.finish(style.SuccessIcon(), fmt.Sprintf("Loaded %s: %d rows, %d metrics (%s)",
				event.Source, event.Rows, len(event.Metrics), strings.Join(event.Metrics, ", ")))
		case pkgEvents.EventDatasetRejected:
			pt.finish(style.ErrorIcon(), fmt.Sprintf("Rejected %s", event.Source))
		}
	}
}

// StopListening stops any spinner still running.
func (pt *CLIProgressTracker) StopListening() {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.spinner != nil {
		pt.spinner.Stop()
		pt.spinner = nil
	}
	pt.done = true
}

// HasCompleted checks if the progress tracker has completed.
func (pt *CLIProgressTracker) HasCompleted() bool {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	return pt.done
}

func (pt *CLIProgressTracker) start(title string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.spinner != nil {
		pt.spinner.Stop()
	}
	s := style.NewSpinner(pt.writer)
	s.SetSuffix(title)
	s.Start()
	pt.spinner = s
}

// finish ends the running spinner with msg, or prints msg when no spinner is
// active.
func (pt *CLIProgressTracker) finish(icon, msg string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	line := icon + " " + msg + "\n"
	if pt.spinner == nil {
		fmt.Fprint(pt.writer, line)
		return
	}

	pt.spinner.SetFinalMSG(line)
	pt.spinner.Stop()
	pt.spinner = nil
}
