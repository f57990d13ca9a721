package repo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hamed0406/storeprobe/internal/domain"
	"github.com/hamed0406/storeprobe/internal/repo/postgres"
	"github.com/hamed0406/storeprobe/internal/repo/supabase"
)

// Store is the read side of the hosted data store, the one capability the
// probe needs.
type Store interface {
	// Query returns at most limit records of collection, unfiltered.
	Query(ctx context.Context, collection string, limit int) ([]domain.Record, error)
}

// Opener builds a Store handle. It must not touch the network, so it only
// fails on malformed arguments.
type Opener func(endpoint, credential string) (Store, error)

// NewOpener picks a backend from the endpoint scheme: http(s) endpoints
// speak the PostgREST API, postgres DSNs go straight to the database.
// timeout bounds each query.
func NewOpener(timeout time.Duration) Opener {
	return func(endpoint, credential string) (Store, error) {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return supabase.New(endpoint, credential, timeout)
		case "postgres", "postgresql":
			return postgres.Open(endpoint, credential, timeout)
		default:
			return nil, fmt.Errorf("unsupported endpoint scheme %q (want https:// or postgres://)", u.Scheme)
		}
	}
}
