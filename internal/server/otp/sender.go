package otp

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// Sender delivers a code to a destination (an email address today).
// Variants are chosen at startup; callers only see this interface.
type Sender interface {
	Send(ctx context.Context, destination, code string) error
}

// NewSender returns the variant registered under name.
func NewSender(name string, logger logging.Logger) (Sender, error) {
	switch name {
	case "", "log":
		return NewLogSender(logger), nil
	case "memory":
		return NewMemorySender(), nil
	}
	return nil, fmt.Errorf("unknown otp sender %q", name)
}

// LogSender writes the code to the log instead of delivering it.
// It exposes the code to anyone reading the logs and is meant for
// development and demos.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "otp_sender")}
}

func (s *LogSender) Send(ctx context.Context, destination, code string) error {
	s.logger.Info(ctx, "sending otp", "destination", destination, "otp", code)
	return nil
}

// Delivery is one code handed to a MemorySender.
type Delivery struct {
	Destination string
	Code        string
}

// MemorySender keeps every delivery in memory.
type MemorySender struct {
	mu         sync.Mutex
	deliveries []Delivery
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, destination, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, Delivery{Destination: destination, Code: code})
	return nil
}

// Deliveries returns a copy of everything sent so far.
func (s *MemorySender) Deliveries() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Delivery(nil), s.deliveries...)
}

// Last returns the most recent code sent to destination.
func (s *MemorySender) Last(destination string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.deliveries) - 1; i >= 0; i-- {
		if s.deliveries[i].Destination == destination {
			return s.deliveries[i].Code, true
		}
	}
	return "", false
}
