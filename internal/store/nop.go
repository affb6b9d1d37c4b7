package store

import (
	"context"

	"github.com/amishk599/tailorin/internal/panel"
)

// NopStore is used when no transcript path is configured. Entries are dropped.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Append(_ context.Context, _ panel.Entry) error      { return nil }
func (s *NopStore) History(_ context.Context, _ int) ([]Record, error) { return nil, nil }
func (s *NopStore) Close() error                                       { return nil }
