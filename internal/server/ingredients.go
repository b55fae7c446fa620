package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/larder/internal/vegan"
	"github.com/kode4food/larder/pkg/api"
	"github.com/kode4food/larder/pkg/log"
)

const ingredientKey = "larder.ingredient"

func (s *Server) listIngredients(c *gin.Context) {
	ingredients, err := s.store.ListIngredients(
		c.Request.Context(), pathRecipe(c).ID,
	)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.IngredientsListResponse{
		Ingredients: ingredients,
		Count:       len(ingredients),
	})
}

func (s *Server) createIngredient(c *gin.Context) {
	req, ok := s.bindIngredient(c)
	if !ok {
		return
	}

	in := &api.Ingredient{
		ID:       api.NewItemID(),
		RecipeID: pathRecipe(c).ID,
	}
	applyIngredient(in, req)
	if err := s.store.CreateIngredient(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, in)
}

func (s *Server) loadIngredient(c *gin.Context) {
	id, err := itemID(c)
	if err != nil {
		fail(c, err)
		return
	}
	in, err := s.store.IngredientByID(
		c.Request.Context(), pathRecipe(c).ID, id,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(ingredientKey, in)
	c.Next()
}

func (s *Server) getIngredient(c *gin.Context) {
	c.JSON(http.StatusOK, pathIngredient(c))
}

func (s *Server) updateIngredient(c *gin.Context) {
	req, ok := s.bindIngredient(c)
	if !ok {
		return
	}

	in := pathIngredient(c)
	applyIngredient(in, req)
	if err := s.store.UpdateIngredient(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}

func (s *Server) deleteIngredient(c *gin.Context) {
	in := pathIngredient(c)
	err := s.store.DeleteIngredient(c.Request.Context(), in.RecipeID, in.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindIngredient decodes and validates an ingredient request, and refuses
// ingredients the vegan lookup rejects
func (s *Server) bindIngredient(c *gin.Context) (*api.IngredientRequest, bool) {
	var req api.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		invalid(c, err)
		return nil, false
	}

	err := vegan.Check(c.Request.Context(), s.vegan, req.Name)
	if errors.Is(err, vegan.ErrNotVegan) {
		slog.Info("Ingredient rejected",
			log.Ingredient(req.Name))
		abortWithError(c, http.StatusBadRequest, vegan.NotVeganMessage)
		return nil, false
	}
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return &req, true
}

func applyIngredient(in *api.Ingredient, req *api.IngredientRequest) {
	in.Name = req.Name
	in.Quantity = req.Quantity
	in.Unit = req.Unit
	in.AdditionalInfo = req.AdditionalInfo
}

func pathIngredient(c *gin.Context) *api.Ingredient {
	return c.MustGet(ingredientKey).(*api.Ingredient)
}
