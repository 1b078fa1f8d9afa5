package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/trezcool/coursepanel/core/panel"
)

// consoleNotifier prints user feedback, one line per notification.
type consoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

var _ panel.Notifier = (*consoleNotifier)(nil)

func newConsoleNotifier(out io.Writer) *consoleNotifier {
	return &consoleNotifier{out: out}
}

func (n *consoleNotifier) NotifySuccess(msg string) { n.print("OK", msg) }
func (n *consoleNotifier) NotifyError(msg string)   { n.print("ERROR", msg) }
func (n *consoleNotifier) NotifyWarning(msg string) { n.print("WARNING", msg) }

func (n *consoleNotifier) print(level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.out, "[%s] %s\n", level, msg)
}
