package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/pkg/api"
)

const (
	// AccessTokenCookie carries the API token when no Authorization
	// header is sent
	AccessTokenCookie = "accessToken"

	userKey    = "larder.user"
	accountKey = "larder.account"
	bearer     = "Bearer "
)

// authenticate resolves the API token of a request, if any, to its user.
// Requests without a token continue anonymously; unknown tokens are
// rejected
func (s *Server) authenticate(c *gin.Context) {
	token := requestToken(c.Request)
	if token == "" {
		c.Next()
		return
	}

	u, err := s.store.UserByToken(c.Request.Context(), token)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, ErrInvalidToken)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(userKey, u)
	c.Next()
}

func (s *Server) requireUser(c *gin.Context) {
	if currentUser(c) == nil {
		fail(c, ErrAuthRequired)
		return
	}
	c.Next()
}

// requireConfirmed only lets users with a confirmed email through on
// unsafe methods
func (s *Server) requireConfirmed(c *gin.Context) {
	if isSafe(c.Request.Method) {
		c.Next()
		return
	}
	u := currentUser(c)
	if u == nil {
		fail(c, ErrAuthRequired)
		return
	}
	if !u.EmailConfirmed {
		fail(c, ErrEmailUnverified)
		return
	}
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		fail(c, ErrAuthRequired)
		return
	}
	if !u.IsAdmin {
		fail(c, ErrAdminRequired)
		return
	}
	c.Next()
}

// loadAccount resolves the :username path parameter
func (s *Server) loadAccount(c *gin.Context) {
	u, err := s.store.UserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(accountKey, u)
	c.Next()
}

func (s *Server) requireAccountOwner(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		fail(c, ErrAuthRequired)
		return
	}
	if u.ID != pathAccount(c).ID {
		fail(c, ErrNotAccountOwner)
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) *api.User {
	if v, ok := c.Get(userKey); ok {
		return v.(*api.User)
	}
	return nil
}

func pathAccount(c *gin.Context) *api.User {
	return c.MustGet(accountKey).(*api.User)
}

func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		token, _ := strings.CutPrefix(h, bearer)
		return strings.TrimSpace(token)
	}
	if ck, err := r.Cookie(AccessTokenCookie); err == nil {
		return ck.Value
	}
	return ""
}

func isSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
