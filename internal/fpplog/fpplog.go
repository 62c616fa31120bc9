/*
   Structured logging handler for the FP11 diagnostic stack. A thin slog
   wrapper modeled on a mutex-guarded dual file+stderr log handler: writes
   to a log file always, and additionally echoes to stderr when verbose is
   set or the record is at warning level or above.
*/

package fpplog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Handler is an slog.Handler that serializes records as a single line of
// timestamp, level, message and attributes, guarded by a mutex since the
// CLI's REPL goroutine and a SIGINT handler may both log.
type Handler struct {
	out     io.Writer
	inner   slog.Handler
	mu      *sync.Mutex
	verbose bool
}

// New returns a Handler writing to file, additionally echoing to stderr
// when verbose is true.
func New(file io.Writer, opts *slog.HandlerOptions, verbose bool) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &Handler{
		out:     file,
		inner:   slog.NewTextHandler(file, opts),
		mu:      &sync.Mutex{},
		verbose: verbose,
	}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{out: h.out, inner: h.inner.WithAttrs(attrs), mu: h.mu, verbose: h.verbose}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{out: h.out, inner: h.inner.WithGroup(name), mu: h.mu, verbose: h.verbose}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	parts := []string{r.Time.Format("2006/01/02 15:04:05"), r.Level.String() + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.Value.String())
		return true
	})
	line := []byte(strings.Join(parts, " ") + "\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write(line)
	}
	if h.verbose || r.Level >= slog.LevelWarn {
		_, err = os.Stderr.Write(line)
	}
	return err
}
