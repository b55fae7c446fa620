package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/larder/pkg/api"
)

const stepKey = "larder.step"

func (s *Server) listSteps(c *gin.Context) {
	steps, err := s.store.ListSteps(c.Request.Context(), pathRecipe(c).ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.StepsListResponse{
		Steps: steps,
		Count: len(steps),
	})
}

// createStep appends a step to the end of the recipe's sequence
func (s *Server) createStep(c *gin.Context) {
	var req api.StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		invalid(c, err)
		return
	}

	st := &api.Step{
		ID:          api.NewItemID(),
		RecipeID:    pathRecipe(c).ID,
		Instruction: req.Instruction,
	}
	err := s.sequencer.Append(c.Request.Context(), s.store.Steps(), st)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (s *Server) loadStep(c *gin.Context) {
	id, err := itemID(c)
	if err != nil {
		fail(c, err)
		return
	}
	st, err := s.store.StepByID(c.Request.Context(), pathRecipe(c).ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(stepKey, st)
	c.Next()
}

func (s *Server) getStep(c *gin.Context) {
	c.JSON(http.StatusOK, pathStep(c))
}

func (s *Server) updateStep(c *gin.Context) {
	var req api.StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		invalid(c, err)
		return
	}

	st := pathStep(c)
	st.Instruction = req.Instruction
	if err := s.store.UpdateStep(c.Request.Context(), st); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// deleteStep removes a step and closes the gap it leaves
func (s *Server) deleteStep(c *gin.Context) {
	err := s.sequencer.Remove(c.Request.Context(), s.store.Steps(), pathStep(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) changeStepOrder(c *gin.Context) {
	s.changeOrder(c, s.store.Steps(), pathStep(c))
}

func pathStep(c *gin.Context) *api.Step {
	return c.MustGet(stepKey).(*api.Step)
}
