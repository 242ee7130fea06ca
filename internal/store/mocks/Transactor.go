package mocks

import "context"

// Transactor runs fn inline and counts how many transactions were opened.
type Transactor struct {
	Count int
}

func (m *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Count++
	return fn(ctx)
}
