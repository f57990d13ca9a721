package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/storeprobe/internal/domain"
)

func TestMemoryStore_QueryRespectsLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 0; i < 8; i++ {
		s.Insert("jobs", domain.Record{"title": fmt.Sprintf("job-%d", i)})
	}

	recs, err := s.Query(ctx, "jobs", 5)
	require.NoError(t, err)
	require.Len(t, recs, 5)
	assert.Equal(t, "job-0", recs[0].Field("title"))
}

func TestMemoryStore_EmptyCollection(t *testing.T) {
	s := New()
	s.Create("jobs")

	recs, err := s.Query(context.Background(), "jobs", 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMemoryStore_MissingCollection(t *testing.T) {
	_, err := New().Query(context.Background(), "jobs", 5)
	assert.EqualError(t, err, `relation "jobs" does not exist`)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := New()
	s.Create("jobs")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Query(ctx, "jobs", 5)
	assert.ErrorIs(t, err, context.Canceled)
}
