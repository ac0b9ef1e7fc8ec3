package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/comigor/jargone-go/internal/logger"
)

// ErrPortUsed is returned by a second Post on the same port.
var ErrPortUsed = errors.New("port already carried a message")

// Handler answers one payload with one response string.
type Handler interface {
	Handle(ctx context.Context, p Payload) string
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, p Payload) string

func (f HandlerFunc) Handle(ctx context.Context, p Payload) string { return f(ctx, p) }

// Port is a one-shot connection: one payload out, one response in.
type Port struct {
	Name string

	mu     sync.Mutex
	posted bool
	out    chan Payload
	in     chan string
}

// Connect opens a port served by h on its own goroutine. The goroutine exits
// after answering or when ctx is done.
func Connect(ctx context.Context, h Handler) *Port {
	p := &Port{
		Name: "popup-port-" + uuid.NewString(),
		out:  make(chan Payload, 1),
		in:   make(chan string, 1),
	}
	go func() {
		select {
		case <-ctx.Done():
			logger.L.Debug("port closed before a message arrived", "port", p.Name)
		case msg := <-p.out:
			p.in <- h.Handle(ctx, msg)
		}
	}()
	return p
}

// Post sends the single outbound payload.
func (p *Port) Post(msg Payload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.posted {
		return ErrPortUsed
	}
	p.posted = true
	p.out <- msg
	return nil
}

// Receive waits for the response string.
func (p *Port) Receive(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case resp := <-p.in:
		return resp, nil
	}
}
