// Package notify carries user-facing notices out of the data layer. The UI
// is an external collaborator; this interface is all the core knows of it.
package notify

import (
	"context"
	"sync"

	"github.com/mpetrovs/spendvault/internal/logging"
)

// Notifier shows a short message to the user. Messages never contain key
// material, ciphertext, or underlying error details.
type Notifier interface {
	Notify(msg string)
}

// GenericFailure is the message shown for any transport failure; the real
// cause goes to the log only.
const GenericFailure = "Something went wrong. Please try again."

// LogNotifier routes notices to the structured log; used by the CLI.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(msg string) {
	n.logger.Info(context.Background(), "notice", "msg", msg)
}

// Capture records notices for assertions in tests.
type Capture struct {
	mu       sync.Mutex
	Messages []string
}

func (c *Capture) Notify(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Messages = append(c.Messages, msg)
}

func (c *Capture) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Messages) == 0 {
		return ""
	}
	return c.Messages[len(c.Messages)-1]
}
