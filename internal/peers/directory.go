// Package peers serves the list of alternate chat servers offered to
// clients on the login page. The list comes from a Store; when the store has
// nothing yet, the default list is written back so later reads agree.
package peers

import (
	"context"
	"errors"
	"log"
	"sync"
)

// DefaultServers is used when no store has been configured yet.
var DefaultServers = []string{"http://localhost:5000"}

// ErrNotConfigured is returned by a Store that holds no server list yet.
var ErrNotConfigured = errors.New("peer servers not configured")

type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, servers []string) error
}

// Directory loads the server list from its store on first use and caches it.
type Directory struct {
	store   Store
	mu      sync.Mutex
	loaded  bool
	servers []string
}

func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

// Servers never returns an empty list. A store that has not been configured
// is seeded with DefaultServers; a store that fails to read is not touched
// and the default is served instead, without caching, so a later call can
// still pick up a repaired source.
func (d *Directory) Servers(ctx context.Context) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded {
		return clone(d.servers)
	}

	servers, err := d.store.Load(ctx)
	switch {
	case errors.Is(err, ErrNotConfigured) || (err == nil && len(servers) == 0):
		servers = clone(DefaultServers)
		if err := d.store.Save(ctx, servers); err != nil {
			log.Printf("⚠️ could not persist default peer servers: %v", err)
		}
	case err != nil:
		log.Printf("⚠️ reading peer servers failed, using default: %v", err)
		return clone(DefaultServers)
	}

	d.servers = servers
	d.loaded = true
	return clone(servers)
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
