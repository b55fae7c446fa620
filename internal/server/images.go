package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/larder/pkg/api"
)

const imageKey = "larder.image"

func (s *Server) listImages(c *gin.Context) {
	images, err := s.store.ListImages(c.Request.Context(), pathRecipe(c).ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.ImagesListResponse{
		Images: images,
		Count:  len(images),
	})
}

func (s *Server) createImage(c *gin.Context) {
	var req api.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		invalid(c, err)
		return
	}

	im := &api.Image{
		ID:         api.NewItemID(),
		RecipeID:   pathRecipe(c).ID,
		URL:        req.URL,
		Identifier: api.ImageIdentifier(req.URL),
	}
	err := s.sequencer.Append(c.Request.Context(), s.store.Images(), im)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, im)
}

func (s *Server) loadImage(c *gin.Context) {
	id, err := itemID(c)
	if err != nil {
		fail(c, err)
		return
	}
	im, err := s.store.ImageByID(c.Request.Context(), pathRecipe(c).ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(imageKey, im)
	c.Next()
}

func (s *Server) getImage(c *gin.Context) {
	c.JSON(http.StatusOK, pathImage(c))
}

func (s *Server) updateImage(c *gin.Context) {
	var req api.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		invalid(c, err)
		return
	}

	im := pathImage(c)
	im.URL = req.URL
	im.Identifier = api.ImageIdentifier(req.URL)
	if err := s.store.UpdateImage(c.Request.Context(), im); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, im)
}

func (s *Server) deleteImage(c *gin.Context) {
	err := s.sequencer.Remove(
		c.Request.Context(), s.store.Images(), pathImage(c),
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) changeImageOrder(c *gin.Context) {
	s.changeOrder(c, s.store.Images(), pathImage(c))
}

func pathImage(c *gin.Context) *api.Image {
	return c.MustGet(imageKey).(*api.Image)
}
