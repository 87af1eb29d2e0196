package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

const (
	ansiReset   = "\x1b[0m"
	ansiBold    = "\x1b[1m"
	ansiDim     = "\x1b[2m"
	ansiRed     = "\x1b[38;5;196m"
	ansiGreen   = "\x1b[38;5;82m"
	ansiYellow  = "\x1b[38;5;214m"
	ansiMagenta = "\x1b[38;5;201m"
	ansiCyan    = "\x1b[38;5;51m"
)

const (
	spinnerInterval = 120 * time.Millisecond
	shortHashLen    = 12
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

type renderer struct {
	color bool
}

func newRenderer(out io.Writer, asJSON bool) renderer {
	return renderer{color: interactive(out, asJSON)}
}

func spinnerEnabled(out io.Writer, asJSON bool) bool {
	return interactive(out, asJSON)
}

// interactive reports whether out is a color capable terminal. NO_COLOR and
// MEMOSTAMP_NO_COLOR both turn decoration off.
func interactive(out io.Writer, asJSON bool) bool {
	if asJSON {
		return false
	}
	for _, key := range []string{"NO_COLOR", "MEMOSTAMP_NO_COLOR"} {
		if strings.TrimSpace(os.Getenv(key)) != "" {
			return false
		}
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	term := strings.TrimSpace(os.Getenv("TERM"))
	return term != "" && term != "dumb"
}

func (r renderer) wrap(code, value string) string {
	if !r.color || value == "" {
		return value
	}
	return code + value + ansiReset
}

func (r renderer) key(value string) string    { return r.wrap(ansiBold+ansiCyan, value) }
func (r renderer) ok(value string) string     { return r.wrap(ansiBold+ansiGreen, value) }
func (r renderer) warn(value string) string   { return r.wrap(ansiBold+ansiYellow, value) }
func (r renderer) err(value string) string    { return r.wrap(ansiBold+ansiRed, value) }
func (r renderer) accent(value string) string { return r.wrap(ansiBold+ansiMagenta, value) }
func (r renderer) dim(value string) string    { return r.wrap(ansiDim, value) }

// outcome renders the hook outcome status, green when accepted and red
// otherwise.
func (r renderer) outcome(outcome domain.Outcome) string {
	label := outcome.Status.String()
	if outcome.Accepted() {
		return r.ok(label)
	}
	return r.err(label)
}

// memo shortens a memo hash for list views; receipts without a memo show "-".
func (r renderer) memo(hash string) string {
	if hash == "" {
		return r.dim("-")
	}
	if len(hash) > shortHashLen {
		return hash[:shortHashLen] + r.dim("...")
	}
	return hash
}

func (r renderer) bar(width int, ratio float64) string {
	if width <= 0 {
		width = 20
	}
	ratio = math.Max(0, math.Min(1, ratio))
	filled := min(int(math.Round(ratio*float64(width))), width)
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

// withSpinner runs fn while drawing a spinner on out. Cancellation does not
// interrupt the drawing loop; fn is expected to observe ctx and return.
func withSpinner(ctx context.Context, out io.Writer, enabled bool, label string, fn func() error) error {
	if !enabled {
		return fn()
	}
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; {
		select {
		case err := <-done:
			fmt.Fprint(out, "\r\x1b[2K")
			return err
		case <-ticker.C:
			fmt.Fprintf(out, "\r%s %s", spinnerFrames[frame%len(spinnerFrames)], label)
			frame++
		case <-ctx.Done():
			label = "cancelling"
		}
	}
}
