package sinks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"duskhollow/server/logging"
)

// Console writes one human-readable line per event.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Write(event logging.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "%s [%s] tick=%d actor=%s/%s %s\n",
		event.Time.Format("15:04:05.000"),
		severityLabel(event.Severity),
		event.Tick,
		event.Actor.Kind,
		event.Actor.ID,
		event.Type,
	)
	return err
}

func (c *Console) Close(context.Context) error { return nil }

func severityLabel(severity logging.Severity) string {
	switch severity {
	case logging.SeverityDebug:
		return "DEBUG"
	case logging.SeverityInfo:
		return "INFO"
	case logging.SeverityWarn:
		return "WARN"
	case logging.SeverityError:
		return "ERROR"
	default:
		return "?"
	}
}
