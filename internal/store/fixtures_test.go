package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/pkg/api"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "larder.db")
	s, err := store.Open(context.Background(), store.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func createUser(t *testing.T, s *store.Store, name string) *api.User {
	t.Helper()
	u := &api.User{
		ID:           api.NewUserID(),
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Token:        "token-" + name,
		Joined:       time.Now(),
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func createRecipe(
	t *testing.T, s *store.Store, author *api.User, title string,
	tags ...string,
) *api.Recipe {
	t.Helper()
	now := time.Now()
	r := &api.Recipe{
		ID:       api.NewRecipeID(),
		AuthorID: author.ID,
		Author:   author.Username,
		Title:    title,
		Slug:     api.Slugify(title),
		Body:     "Cook it.",
		Tags:     tags,
		Created:  now,
		Modified: now,
	}
	require.NoError(t, s.CreateRecipe(context.Background(), r))
	return r
}

func newStep(r *api.Recipe, n int) *api.Step {
	return &api.Step{
		ID:          api.NewItemID(),
		RecipeID:    r.ID,
		Instruction: fmt.Sprintf("Step number %d", n),
	}
}
