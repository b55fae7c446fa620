package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/pkg/api"
	"github.com/kode4food/larder/pkg/log"
)

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	res := make([]*api.UserView, len(users))
	for i, u := range users {
		res[i] = userView(u, false)
	}
	c.JSON(http.StatusOK, api.UsersListResponse{
		Users: res,
		Count: len(res),
	})
}

// getUser shows an account with its recipes. The email address and the
// favourites link are only shown to the account owner
func (s *Server) getUser(c *gin.Context) {
	u := pathAccount(c)
	recipes, err := s.store.RecipesByAuthor(c.Request.Context(), u.ID)
	if err != nil {
		fail(c, err)
		return
	}

	cur := currentUser(c)
	res := userView(u, cur != nil && cur.ID == u.ID)
	res.Recipes = make([]api.RecipeRef, len(recipes))
	for i, r := range recipes {
		res.Recipes[i] = r.Ref()
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) updateUser(c *gin.Context) {
	var req api.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		invalid(c, err)
		return
	}

	u := pathAccount(c)
	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Profile != nil {
		u.Bio = req.Profile.Bio
		u.Avatar = req.Profile.Avatar
	}
	if err := s.store.UpdateUser(c.Request.Context(), u); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userView(u, true))
}

func (s *Server) deleteUser(c *gin.Context) {
	u := pathAccount(c)
	if err := s.store.DeleteUser(c.Request.Context(), u.ID); err != nil {
		fail(c, err)
		return
	}
	slog.Info("User deleted",
		log.UserID(u.ID),
		log.Username(u.Username))
	c.Status(http.StatusNoContent)
}

func (s *Server) getFavourites(c *gin.Context) {
	u := pathAccount(c)
	refs, err := s.store.Favourites(c.Request.Context(), u.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FavouritesResponse{
		Owner:   u.Username,
		Recipes: refs,
	})
}

// setFavourites replaces the favourite list. Every referenced recipe must
// exist
func (s *Server) setFavourites(c *gin.Context) {
	var req api.FavouritesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}

	ctx := c.Request.Context()
	u := pathAccount(c)
	err := s.store.SetFavourites(ctx, u.ID, req.Recipes)
	if errors.Is(err, store.ErrNotFound) {
		invalid(c, err)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	refs, err := s.store.Favourites(ctx, u.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FavouritesResponse{
		Owner:   u.Username,
		Recipes: refs,
	})
}

func userPath(username string) string {
	return fmt.Sprintf("/api/users/%s", username)
}

func userView(u *api.User, owner bool) *api.UserView {
	res := &api.UserView{
		Profile:  api.Profile{Bio: u.Bio, Avatar: u.Avatar},
		Username: u.Username,
		URL:      userPath(u.Username),
	}
	if owner {
		res.Email = u.Email
		res.Favourites = userPath(u.Username) + "/favourite-recipes"
	}
	return res
}
