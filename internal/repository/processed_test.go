package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindahan/ledger-service/internal/pathstore"
)

func TestProcessedWebhookRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewProcessedWebhookRepository(pathstore.NewMemoryStore())

	already, err := repo.CheckAndMark(ctx, "inv-1")
	require.NoError(t, err)
	assert.False(t, already, "first delivery claims the invoice")

	already, err = repo.CheckAndMark(ctx, "inv-1")
	require.NoError(t, err)
	assert.True(t, already, "second delivery is a replay")

	already, err = repo.CheckAndMark(ctx, "inv-2")
	require.NoError(t, err)
	assert.False(t, already, "different invoices are independent")

	// Releasing the claim lets a retry run again.
	require.NoError(t, repo.Release(ctx, "inv-1"))
	already, err = repo.CheckAndMark(ctx, "inv-1")
	require.NoError(t, err)
	assert.False(t, already)
}
