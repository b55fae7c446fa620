package helpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kode4food/larder/internal/account"
	"github.com/kode4food/larder/pkg/api"
)

// TestPassword is the password of every account created by the fixtures
const TestPassword = "Secret99!"

// CreateUser creates an account with a confirmed email
func (e *TestEnv) CreateUser(t *testing.T, name string) *api.User {
	t.Helper()
	return e.createUser(t, name, false)
}

// CreateAdmin creates an administrator account
func (e *TestEnv) CreateAdmin(t *testing.T, name string) *api.User {
	t.Helper()
	return e.createUser(t, name, true)
}

// CreateUnconfirmed creates an account whose email is not yet confirmed
func (e *TestEnv) CreateUnconfirmed(t *testing.T, name string) *api.User {
	t.Helper()
	u := e.createUser(t, name, false)
	u.EmailConfirmed = false
	require.NoError(t, e.Store.UpdateUser(context.Background(), u))
	return u
}

// CreateRecipe stores a recipe authored by u
func (e *TestEnv) CreateRecipe(
	t *testing.T, u *api.User, title string, tags ...string,
) *api.Recipe {
	t.Helper()
	now := time.Now()
	r := &api.Recipe{
		ID:       api.NewRecipeID(),
		AuthorID: u.ID,
		Author:   u.Username,
		Title:    title,
		Slug:     api.Slugify(title),
		Body:     "Cook it slowly.",
		Tags:     tags,
		Created:  now,
		Modified: now,
	}
	require.NoError(t, e.Store.CreateRecipe(context.Background(), r))
	return r
}

// CreateTag stores a tag named name
func (e *TestEnv) CreateTag(t *testing.T, name string) *api.Tag {
	t.Helper()
	tag := &api.Tag{Slug: api.Slugify(name), Name: name}
	require.NoError(t, e.Store.CreateTag(context.Background(), tag))
	return tag
}

// AddSteps appends n steps to a recipe through the sequencer
func (e *TestEnv) AddSteps(t *testing.T, r *api.Recipe, n int) []*api.Step {
	t.Helper()
	res := make([]*api.Step, n)
	for i := range n {
		st := &api.Step{
			ID:          api.NewItemID(),
			RecipeID:    r.ID,
			Instruction: fmt.Sprintf("Step number %d", i+1),
		}
		err := e.Sequencer.Append(context.Background(), e.Store.Steps(), st)
		require.NoError(t, err)
		res[i] = st
	}
	return res
}

// AddImages appends n images to a recipe through the sequencer
func (e *TestEnv) AddImages(t *testing.T, r *api.Recipe, n int) []*api.Image {
	t.Helper()
	res := make([]*api.Image, n)
	for i := range n {
		url := fmt.Sprintf("https://cdn.example.com/%s/%d.jpg", r.Slug, i+1)
		im := &api.Image{
			ID:         api.NewItemID(),
			RecipeID:   r.ID,
			URL:        url,
			Identifier: api.ImageIdentifier(url),
		}
		err := e.Sequencer.Append(context.Background(), e.Store.Images(), im)
		require.NoError(t, err)
		res[i] = im
	}
	return res
}

// StepOrders returns the stored position of every step of a recipe keyed
// by instruction
func (e *TestEnv) StepOrders(t *testing.T, r *api.Recipe) map[string]int {
	t.Helper()
	steps, err := e.Store.ListSteps(context.Background(), r.ID)
	require.NoError(t, err)
	res := make(map[string]int, len(steps))
	for _, st := range steps {
		res[st.Instruction] = st.Order
	}
	return res
}

// RecipePath returns the API path of a recipe
func RecipePath(r *api.Recipe) string {
	return fmt.Sprintf("/api/users/%s/recipe/%s", r.Author, r.Slug)
}

func (e *TestEnv) createUser(t *testing.T, name string, admin bool) *api.User {
	t.Helper()
	u, err := e.Accounts.CreateUser(context.Background(), &account.NewUser{
		Username: name,
		Email:    name + "@example.com",
		Password: TestPassword,
		IsAdmin:  admin,
	})
	require.NoError(t, err)
	return u
}
