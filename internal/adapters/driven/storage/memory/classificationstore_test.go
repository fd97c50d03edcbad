package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

func TestClassificationStore_RoundTrip(t *testing.T) {
	store := NewClassificationStore()
	ctx := context.Background()

	batch := &domain.ClassificationBatch{
		Documents:          []domain.Document{{Filename: "MSA.pdf", Role: domain.RoleBase}},
		ChronologicalOrder: []string{"MSA.pdf"},
	}
	require.NoError(t, store.SaveBatch(ctx, "proj", batch))

	loaded, err := store.LoadBatch(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, batch, loaded)

	loaded.ChronologicalOrder[0] = "other"
	again, err := store.LoadBatch(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, []string{"MSA.pdf"}, again.ChronologicalOrder)
}

func TestClassificationStore_Replace(t *testing.T) {
	store := NewClassificationStore()
	ctx := context.Background()

	require.NoError(t, store.SaveBatch(ctx, "proj", &domain.ClassificationBatch{ChronologicalOrder: []string{"a"}}))
	require.NoError(t, store.SaveBatch(ctx, "proj", &domain.ClassificationBatch{ChronologicalOrder: []string{"b"}}))

	loaded, err := store.LoadBatch(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, loaded.ChronologicalOrder)
}

func TestClassificationStore_NotFound(t *testing.T) {
	store := NewClassificationStore()
	_, err := store.LoadBatch(context.Background(), "none")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.SaveBatch(context.Background(), "p", nil), domain.ErrInvalidInput)
}
