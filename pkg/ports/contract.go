package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	appID := "contract-test-app-" + time.Now().Format("20060102150405")

	sample := domain.Tree{
		domain.Container{StyleClass: "flex flex-col", Children: []domain.Component{
			domain.Text{Content: "My Todos"},
			domain.InputField{Label: "New item", Placeholder: "milk", SubmitAction: "add_item", SubmitLabel: "Add"},
			domain.Container{Children: []domain.Component{
				domain.Button{StyleClass: "btn btn-primary", Content: "Add", ClickAction: "add item"},
			}},
		}},
		domain.Link{Content: "Home", ClickAction: "go home & back"},
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, appID, sample)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, appID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sample, loaded, "a stored tree must come back unchanged")
	})

	t.Run("Save Replaces", func(t *testing.T) {
		next := domain.Tree{domain.Text{StyleClass: "text-danger", Content: "replaced"}}
		require.NoError(t, store.Save(ctx, appID, next))

		loaded, err := store.Load(ctx, appID)
		require.NoError(t, err)
		assert.Equal(t, next, loaded)
	})

	t.Run("Empty Tree", func(t *testing.T) {
		id := appID + "-empty"
		require.NoError(t, store.Save(ctx, id, domain.Tree{}))
		defer func() { _ = store.Delete(ctx, id) }()

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "an empty tree is still a stored app")
		assert.Empty(t, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+appID)
		assert.ErrorIs(t, err, domain.ErrAppNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, appID, sample))

		err := store.Delete(ctx, appID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, appID)
		assert.ErrorIs(t, err, domain.ErrAppNotFound, "Load after Delete should return ErrAppNotFound")

		assert.NoError(t, store.Delete(ctx, appID), "Delete of a missing app is a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := appID + "-1"
		id2 := appID + "-2"
		require.NoError(t, store.Save(ctx, id1, sample))
		require.NoError(t, store.Save(ctx, id2, sample))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		apps, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, apps, id1)
		assert.Contains(t, apps, id2)
	})
}
