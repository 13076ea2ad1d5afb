// Package notify delivers alert messages to the configured messaging
// channels. All senders receive the same text concurrently; one channel
// failing or stalling never affects another, and dispatch never blocks the
// tick-processing path.
package notify

import (
	"sync"

	"github.com/kalpesh33in-max/banknifty-dashboard/internal/logger"
)

// Sender is the interface each messaging channel implements.
type Sender interface {
	// Send delivers the message text, returning an error on failure.
	Send(text string) error
	// Name returns a short channel identifier for logging (e.g. "telegram").
	Name() string
}

// Dispatcher fans a message out to all senders. Each Dispatch call returns
// immediately; delivery runs in per-sender goroutines whose failures are
// logged and absorbed.
type Dispatcher struct {
	senders []Sender
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given senders. A dispatcher
// with no senders is valid and drops every message.
func NewDispatcher(senders ...Sender) *Dispatcher {
	return &Dispatcher{senders: senders}
}

// Dispatch sends text to every channel without waiting for any outcome.
func (d *Dispatcher) Dispatch(text string) {
	for _, s := range d.senders {
		d.wg.Add(1)
		go func(s Sender) {
			defer d.wg.Done()
			if err := s.Send(text); err != nil {
				logger.Error("Failed to send %s message: %v", s.Name(), err)
				return
			}
			logger.Info("%s message sent", s.Name())
		}(s)
	}
}

// Wait blocks until all in-flight deliveries finish. Used at shutdown so the
// stop notification reaches the channels before the process exits.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
