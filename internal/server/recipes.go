package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/larder/internal/archive"
	"github.com/kode4food/larder/pkg/api"
	"github.com/kode4food/larder/pkg/log"
)

const recipeKey = "larder.recipe"

func (s *Server) listRecipes(c *gin.Context) {
	recipes, err := s.store.ListRecipes(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	res := make([]*api.RecipeResponse, len(recipes))
	for i, r := range recipes {
		res[i] = recipeResponse(r)
	}
	c.JSON(http.StatusOK, api.RecipesListResponse{
		Recipes: res,
		Count:   len(res),
	})
}

func (s *Server) createRecipe(c *gin.Context) {
	var req api.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		invalid(c, err)
		return
	}

	u := currentUser(c)
	now := time.Now()
	r := &api.Recipe{
		ID:       api.NewRecipeID(),
		AuthorID: u.ID,
		Author:   u.Username,
		Created:  now,
		Modified: now,
	}
	applyRecipe(r, &req)

	if err := s.store.CreateRecipe(c.Request.Context(), r); err != nil {
		fail(c, err)
		return
	}
	slog.Info("Recipe created",
		log.RecipeID(r.ID),
		log.Username(r.Author))
	c.JSON(http.StatusCreated, recipeResponse(r))
}

// loadRecipe resolves the recipe named by the path. Unsafe methods also
// require a confirmed email and ownership of the recipe
func (s *Server) loadRecipe(c *gin.Context) {
	unsafe := !isSafe(c.Request.Method)
	u := currentUser(c)
	if unsafe && u == nil {
		fail(c, ErrAuthRequired)
		return
	}
	if unsafe && !u.EmailConfirmed {
		fail(c, ErrEmailUnverified)
		return
	}

	r, err := s.store.RecipeByRef(c.Request.Context(), api.RecipeRef{
		Author: c.Param("username"),
		Slug:   c.Param("slug"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	if unsafe && r.AuthorID != u.ID {
		fail(c, ErrNotOwner)
		return
	}
	c.Set(recipeKey, r)
	c.Next()
}

// getRecipe counts a view for every reader other than the author
func (s *Server) getRecipe(c *gin.Context) {
	r := pathRecipe(c)
	if u := currentUser(c); u == nil || u.ID != r.AuthorID {
		if err := s.store.IncrementViews(c.Request.Context(), r.ID); err != nil {
			fail(c, err)
			return
		}
		r.Views++
	}
	c.JSON(http.StatusOK, recipeResponse(r))
}

func (s *Server) updateRecipe(c *gin.Context) {
	var req api.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	s.saveRecipe(c, &req)
}

func (s *Server) patchRecipe(c *gin.Context) {
	var patch api.RecipePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badJSON(c, err)
		return
	}
	s.saveRecipe(c, patch.Apply(pathRecipe(c)))
}

func (s *Server) saveRecipe(c *gin.Context, req *api.RecipeRequest) {
	if err := req.Validate(); err != nil {
		invalid(c, err)
		return
	}

	r := pathRecipe(c)
	applyRecipe(r, req)
	r.Modified = time.Now()
	if err := s.store.UpdateRecipe(c.Request.Context(), r); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeResponse(r))
}

// deleteRecipe archives a snapshot of the recipe and its child resources
// before removing it
func (s *Server) deleteRecipe(c *gin.Context) {
	ctx := c.Request.Context()
	r := pathRecipe(c)

	if s.archive != nil {
		snap, err := s.snapshot(c, r)
		if err != nil {
			fail(c, err)
			return
		}
		if _, err := s.archive.Put(ctx, snap); err != nil {
			slog.Error("Recipe archive failed",
				log.RecipeID(r.ID),
				log.Error(err))
			abortWithError(c, http.StatusInternalServerError,
				fmt.Sprintf("%s: %v", ErrArchiveRecipe, err))
			return
		}
	}

	if err := s.store.DeleteRecipe(ctx, r.ID); err != nil {
		fail(c, err)
		return
	}
	slog.Info("Recipe deleted",
		log.RecipeID(r.ID),
		log.Username(r.Author))
	c.Status(http.StatusNoContent)
}

func (s *Server) snapshot(
	c *gin.Context, r *api.Recipe,
) (*archive.Snapshot, error) {
	ctx := c.Request.Context()
	steps, err := s.store.ListSteps(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	images, err := s.store.ListImages(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	ingredients, err := s.store.ListIngredients(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return &archive.Snapshot{
		Deleted:     time.Now(),
		Recipe:      r,
		DeletedBy:   currentUser(c).Username,
		Steps:       steps,
		Images:      images,
		Ingredients: ingredients,
	}, nil
}

func applyRecipe(r *api.Recipe, req *api.RecipeRequest) {
	r.Title = req.Title
	r.Slug = api.Slugify(req.Title)
	r.Body = req.Body
	r.Tags = req.Tags
	if r.Tags == nil {
		r.Tags = []string{}
	}
}

func pathRecipe(c *gin.Context) *api.Recipe {
	return c.MustGet(recipeKey).(*api.Recipe)
}

func recipePath(ref api.RecipeRef) string {
	return fmt.Sprintf("/api/users/%s/recipe/%s", ref.Author, ref.Slug)
}

func recipeResponse(r *api.Recipe) *api.RecipeResponse {
	base := recipePath(r.Ref())
	return &api.RecipeResponse{
		Recipe:      r,
		URL:         base,
		Images:      base + "/images",
		Ingredients: base + "/ingredients",
		Steps:       base + "/steps",
	}
}
