package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/pkg/api"
)

func TestRecipeLifecycle(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	anna := createUser(t, s, "anna")
	require.NoError(t, s.CreateTag(ctx, &api.Tag{Slug: "quick", Name: "Quick"}))
	require.NoError(t, s.CreateTag(ctx, &api.Tag{Slug: "vegan", Name: "Vegan"}))

	r := createRecipe(t, s, anna, "Chickpea Curry", "vegan", "quick", "vegan")
	assert.Equal(t, []string{"quick", "vegan"}, r.Tags)

	got, err := s.RecipeByRef(ctx, api.RecipeRef{
		Author: "anna", Slug: "chickpea-curry",
	})
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, anna.ID, got.AuthorID)
	assert.Equal(t, "anna", got.Author)
	assert.Equal(t, []string{"quick", "vegan"}, got.Tags)
	assert.Equal(t, 0, got.Views)

	require.NoError(t, s.IncrementViews(ctx, r.ID))
	require.NoError(t, s.IncrementViews(ctx, r.ID))
	got, err = s.RecipeByRef(ctx, r.Ref())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)

	got.Title = "Red Curry"
	got.Slug = api.Slugify(got.Title)
	got.Tags = []string{"quick"}
	got.Modified = time.Now()
	require.NoError(t, s.UpdateRecipe(ctx, got))

	_, err = s.RecipeByRef(ctx, r.Ref())
	assert.ErrorIs(t, err, store.ErrNotFound)
	got, err = s.RecipeByRef(ctx, api.RecipeRef{Author: "anna", Slug: "red-curry"})
	require.NoError(t, err)
	assert.Equal(t, []string{"quick"}, got.Tags)

	require.NoError(t, s.DeleteRecipe(ctx, r.ID))
	assert.ErrorIs(t, s.DeleteRecipe(ctx, r.ID), store.ErrNotFound)
	assert.ErrorIs(t, s.IncrementViews(ctx, r.ID), store.ErrNotFound)
}

func TestRecipeConflicts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	anna := createUser(t, s, "anna")
	ben := createUser(t, s, "ben")
	createRecipe(t, s, anna, "Dal")

	dup := &api.Recipe{
		ID: api.NewRecipeID(), AuthorID: anna.ID, Title: "Dal", Slug: "dal",
		Body: "x", Created: time.Now(), Modified: time.Now(),
	}
	assert.ErrorIs(t, s.CreateRecipe(ctx, dup), store.ErrConflict)

	createRecipe(t, s, ben, "Dal")

	tagged := &api.Recipe{
		ID: api.NewRecipeID(), AuthorID: anna.ID, Title: "Soup",
		Slug: "soup", Body: "x", Tags: []string{"missing"},
		Created: time.Now(), Modified: time.Now(),
	}
	assert.ErrorIs(t, s.CreateRecipe(ctx, tagged), store.ErrUnknownTag)
	_, err := s.RecipeByRef(ctx, api.RecipeRef{Author: "anna", Slug: "soup"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListRecipesNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	anna := createUser(t, s, "anna")
	ben := createUser(t, s, "ben")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, s.CreateRecipe(ctx, &api.Recipe{
		ID: api.NewRecipeID(), AuthorID: anna.ID, Title: "Old", Slug: "old",
		Body: "x", Created: past, Modified: past,
	}))
	createRecipe(t, s, ben, "New")

	all, err := s.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "New", all[0].Title)
	assert.Equal(t, []string{}, all[0].Tags)

	mine, err := s.RecipesByAuthor(ctx, anna.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Old", mine[0].Title)
}

func TestDeletedAuthorKeepsRecipes(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	anna := createUser(t, s, "anna")
	createRecipe(t, s, anna, "Dal")

	require.NoError(t, s.DeleteUser(ctx, anna.ID))
	all, err := s.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "", all[0].Author)
	assert.Equal(t, api.UserID(""), all[0].AuthorID)
}

func TestTags(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	anna := createUser(t, s, "anna")

	require.NoError(t, s.CreateTag(ctx, &api.Tag{Slug: "quick", Name: "Quick"}))
	assert.ErrorIs(t,
		s.CreateTag(ctx, &api.Tag{Slug: "quick-2", Name: "Quick"}),
		store.ErrConflict,
	)
	r := createRecipe(t, s, anna, "Dal", "quick")

	require.NoError(t, s.RenameTag(ctx, "quick",
		&api.Tag{Slug: "fast", Name: "Fast"}))
	_, err := s.TagBySlug(ctx, "quick")
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.RecipeByRef(ctx, r.Ref())
	require.NoError(t, err)
	assert.Equal(t, []string{"fast"}, got.Tags)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Fast", tags[0].Name)

	require.NoError(t, s.DeleteTag(ctx, "fast"))
	assert.ErrorIs(t, s.DeleteTag(ctx, "fast"), store.ErrNotFound)
	got, err = s.RecipeByRef(ctx, r.Ref())
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestFavourites(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	anna := createUser(t, s, "anna")
	ben := createUser(t, s, "ben")
	dal := createRecipe(t, s, ben, "Dal")
	soup := createRecipe(t, s, anna, "Soup")

	favs, err := s.Favourites(ctx, anna.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)

	require.NoError(t, s.SetFavourites(ctx, anna.ID,
		[]api.RecipeRef{dal.Ref(), soup.Ref(), dal.Ref()}))
	favs, err = s.Favourites(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, []api.RecipeRef{soup.Ref(), dal.Ref()}, favs)

	err = s.SetFavourites(ctx, anna.ID,
		[]api.RecipeRef{{Author: "ben", Slug: "missing"}})
	assert.ErrorIs(t, err, store.ErrNotFound)

	favs, err = s.Favourites(ctx, anna.ID)
	require.NoError(t, err)
	assert.Len(t, favs, 2)
}
