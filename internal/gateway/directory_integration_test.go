//go:build integration

package gateway_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrail/internal/gateway"
	"payrail/pkg/sentinel"
	"payrail/pkg/testutil/containers"
)

func TestPostgresDirectory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)
	_, err := pg.DB.ExecContext(ctx,
		`INSERT INTO party_configs (code, base_url, api_key) VALUES ($1, $2, $3)`,
		"XYZ", "http://xyz.example", "secret")
	require.NoError(t, err)

	dir := gateway.NewPostgresDirectory(pg.DB)

	t.Run("resolves a configured party", func(t *testing.T) {
		p, err := dir.Resolve(ctx, "XYZ")
		require.NoError(t, err)
		assert.Equal(t, "http://xyz.example", p.BaseURL)
		assert.Equal(t, "secret", p.APIKey)
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		_, err := dir.Resolve(ctx, "NOPE")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
