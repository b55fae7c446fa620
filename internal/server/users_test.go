package server_test

import (
	"net/http"
	"testing"

	"github.com/kode4food/larder/internal/assert"
	"github.com/kode4food/larder/internal/assert/helpers"
	"github.com/kode4food/larder/pkg/api"
)

func TestListUsers(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)
		env.CreateUser(t, "bob")
		env.CreateUser(t, "anna")

		var res api.UsersListResponse
		as.JSON(env.Get("/api/users", ""), http.StatusOK, &res)
		as.Equal(2, res.Count)
		as.Equal("anna", res.Users[0].Username)
		as.Empty(res.Users[0].Email)
		as.Equal("/api/users/anna", res.Users[0].URL)
	})
}

func TestGetUser(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)
		anna := env.CreateUser(t, "anna")
		bob := env.CreateUser(t, "bob")
		env.CreateRecipe(t, anna, "Dal")

		var res api.UserView
		as.JSON(env.Get("/api/users/anna", bob.Token), http.StatusOK, &res)
		as.Empty(res.Email)
		as.Empty(res.Favourites)
		as.Equal([]api.RecipeRef{{Author: "anna", Slug: "dal"}}, res.Recipes)

		as.JSON(env.Get("/api/users/anna", anna.Token), http.StatusOK, &res)
		as.Equal("anna@example.com", res.Email)
		as.Equal("/api/users/anna/favourite-recipes", res.Favourites)

		as.Status(env.Get("/api/users/nobody", ""), http.StatusNotFound)
	})
}

func TestUpdateUser(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)
		anna := env.CreateUser(t, "anna")
		bob := env.CreateUser(t, "bob")

		name := "chef_anna"
		req := api.UserUpdateRequest{
			Username: &name,
			Profile:  &api.Profile{Bio: "Loves lentils"},
		}

		w := env.Do(http.MethodPatch, "/api/users/anna", req, bob.Token)
		as.ErrorResponse(w, http.StatusForbidden, "owner of this account")

		w = env.Do(http.MethodPatch, "/api/users/anna", req, "")
		as.ErrorResponse(w, http.StatusUnauthorized, "")

		var res api.UserView
		as.JSON(env.Do(http.MethodPatch, "/api/users/anna", req, anna.Token),
			http.StatusOK, &res)
		as.Equal("chef_anna", res.Username)
		as.Equal("Loves lentils", res.Profile.Bio)

		taken := "bob@example.com"
		w = env.Do(http.MethodPut, "/api/users/chef_anna",
			api.UserUpdateRequest{Email: &taken}, anna.Token)
		as.ErrorResponse(w, http.StatusConflict, "")

		bad := "not an email"
		w = env.Do(http.MethodPut, "/api/users/chef_anna",
			api.UserUpdateRequest{Email: &bad}, anna.Token)
		as.Status(w, http.StatusBadRequest)
	})
}

func TestDeleteUserKeepsRecipes(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)
		anna := env.CreateUser(t, "anna")
		env.CreateRecipe(t, anna, "Dal")

		w := env.Do(http.MethodDelete, "/api/users/anna", nil, anna.Token)
		as.Status(w, http.StatusNoContent)
		as.Status(env.Get("/api/users/anna", ""), http.StatusNotFound)

		var res api.RecipesListResponse
		as.JSON(env.Get("/api/recipes", ""), http.StatusOK, &res)
		as.Equal(1, res.Count)
		as.Empty(res.Recipes[0].Author)
	})
}

func TestFavourites(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)
		anna := env.CreateUser(t, "anna")
		bob := env.CreateUser(t, "bob")
		dal := env.CreateRecipe(t, bob, "Dal")
		path := "/api/users/anna/favourite-recipes"

		var res api.FavouritesResponse
		as.JSON(env.Get(path, anna.Token), http.StatusOK, &res)
		as.Equal("anna", res.Owner)
		as.Empty(res.Recipes)

		as.Status(env.Get(path, bob.Token), http.StatusForbidden)

		as.JSON(env.Do(http.MethodPut, path, api.FavouritesRequest{
			Recipes: []api.RecipeRef{dal.Ref(), dal.Ref()},
		}, anna.Token), http.StatusOK, &res)
		as.Equal([]api.RecipeRef{dal.Ref()}, res.Recipes)

		w := env.Do(http.MethodPut, path, api.FavouritesRequest{
			Recipes: []api.RecipeRef{{Author: "bob", Slug: "missing"}},
		}, anna.Token)
		as.ErrorResponse(w, http.StatusBadRequest, "not found")

		as.JSON(env.Get(path, anna.Token), http.StatusOK, &res)
		as.Equal([]api.RecipeRef{dal.Ref()}, res.Recipes)
	})
}
