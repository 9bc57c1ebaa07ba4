package minigame

import "context"

// Sender delivers a message to the other side of the channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// Post delivers msg on a best-effort basis. It never returns an error and
// never panics: a failed or panicking sender is ignored so gameplay continues
// when the host is gone. Each message is attempted once.
func Post(ctx context.Context, s Sender, msg Message) {
	if s == nil {
		return
	}
	defer func() { _ = recover() }()
	_ = s.Send(ctx, msg)
}

// Senders posts every message to each sender in order, best effort.
type Senders []Sender

func (ss Senders) Send(ctx context.Context, msg Message) error {
	for _, s := range ss {
		Post(ctx, s, msg)
	}
	return nil
}
