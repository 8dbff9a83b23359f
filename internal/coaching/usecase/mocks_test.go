package usecase

import (
	"context"
	"sync"

	"coach-portal/internal/coaching/domain/model"
)

// MockMailer records every email and answers with SendFn (true when nil).
type MockMailer struct {
	mu     sync.Mutex
	Sent   []model.Email
	SendFn func(msg model.Email) bool
}

func (m *MockMailer) Send(ctx context.Context, msg model.Email) bool {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
	if m.SendFn != nil {
		return m.SendFn(msg)
	}
	return true
}

func (m *MockMailer) Recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Sent))
	for _, e := range m.Sent {
		out = append(out, e.To)
	}
	return out
}
