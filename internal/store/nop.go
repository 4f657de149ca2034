package store

import (
	"context"

	"github.com/amishk599/jobdigest/internal/model"
)

// NopStore discards run history. Preview runs use it so nothing is recorded.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) RecordDigest(context.Context, model.Run) error { return nil }
func (s *NopStore) RecentRuns(context.Context, int) ([]model.Run, error) {
	return nil, nil
}
