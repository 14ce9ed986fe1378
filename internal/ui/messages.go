package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/reefcast/internal/digest"
)

// loadTimeout bounds one digest run from the browser
const loadTimeout = 3 * time.Minute

// DigestGenerator builds the report the browser shows
type DigestGenerator interface {
	Generate(ctx context.Context, opts digest.Options) *digest.Report
}

// digestLoadedMsg is sent when a digest run finishes
type digestLoadedMsg struct {
	report *digest.Report
}

// errMsg is a message type for errors
type errMsg struct {
	err error
}

// loadDigest runs the generator in the background
func loadDigest(gen DigestGenerator, opts digest.Options) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		report := gen.Generate(ctx, opts)
		if err := ctx.Err(); err != nil {
			return errMsg{err: err}
		}
		return digestLoadedMsg{report: report}
	}
}
