package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"payrail/pkg/sentinel"
)

// PartyConfig is a counterparty connection descriptor. Owned by
// configuration; the protocol core only reads it.
type PartyConfig struct {
	Code    string
	BaseURL string
	APIKey  string
}

// Directory resolves a party code to its connection descriptor, returning
// sentinel.ErrNotFound for unknown codes.
type Directory interface {
	Resolve(ctx context.Context, code string) (PartyConfig, error)
}

// InMemoryDirectory serves a fixed set of parties, typically seeded from
// configuration at startup.
type InMemoryDirectory struct {
	mu      sync.RWMutex
	parties map[string]PartyConfig
}

func NewInMemoryDirectory(parties []PartyConfig) *InMemoryDirectory {
	d := &InMemoryDirectory{parties: make(map[string]PartyConfig, len(parties))}
	for _, p := range parties {
		d.parties[p.Code] = p
	}
	return d
}

func (d *InMemoryDirectory) Resolve(_ context.Context, code string) (PartyConfig, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if p, ok := d.parties[code]; ok {
		return p, nil
	}
	return PartyConfig{}, sentinel.ErrNotFound
}

// PostgresDirectory reads the party_configs table, letting counterparties be
// onboarded without a redeploy.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) Resolve(ctx context.Context, code string) (PartyConfig, error) {
	query := `SELECT code, base_url, api_key FROM party_configs WHERE code = $1`
	var p PartyConfig
	err := d.db.QueryRowContext(ctx, query, code).Scan(&p.Code, &p.BaseURL, &p.APIKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PartyConfig{}, sentinel.ErrNotFound
		}
		return PartyConfig{}, fmt.Errorf("resolve party: %w", err)
	}
	return p, nil
}
