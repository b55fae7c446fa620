package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/larder/pkg/api"
)

func (s *Server) listTags(c *gin.Context) {
	tags, err := s.store.ListTags(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.TagsListResponse{
		Tags:  tags,
		Count: len(tags),
	})
}

func (s *Server) createTag(c *gin.Context) {
	req, ok := bindTag(c)
	if !ok {
		return
	}

	t := &api.Tag{Slug: api.Slugify(req.Name), Name: req.Name}
	if err := s.store.CreateTag(c.Request.Context(), t); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) getTag(c *gin.Context) {
	t, err := s.store.TagBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// renameTag replaces the name of a tag; its slug follows the new name
func (s *Server) renameTag(c *gin.Context) {
	req, ok := bindTag(c)
	if !ok {
		return
	}

	t := &api.Tag{Slug: api.Slugify(req.Name), Name: req.Name}
	err := s.store.RenameTag(c.Request.Context(), c.Param("slug"), t)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTag(c *gin.Context) {
	if err := s.store.DeleteTag(c.Request.Context(), c.Param("slug")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindTag(c *gin.Context) (*api.TagRequest, bool) {
	var req api.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		invalid(c, err)
		return nil, false
	}
	return &req, true
}
