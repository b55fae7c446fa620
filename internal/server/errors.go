package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/larder/internal/account"
	"github.com/kode4food/larder/internal/order"
	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/internal/tokens"
	"github.com/kode4food/larder/internal/vegan"
	"github.com/kode4food/larder/pkg/api"
	"github.com/kode4food/larder/pkg/log"
)

var (
	ErrInvalidJSON     = errors.New("invalid JSON request")
	ErrAuthRequired    = errors.New("authentication credentials were not provided")
	ErrInvalidToken    = errors.New("invalid token")
	ErrNotOwner        = errors.New("you can't make changes to not your content")
	ErrNotAccountOwner = errors.New("you must be owner of this account")
	ErrEmailUnverified = errors.New("you must confirm your email first")
	ErrAdminRequired   = errors.New("you must be an administrator")
	ErrArchiveRecipe   = errors.New("failed to archive recipe")
)

// statusOf maps domain errors onto HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, order.ErrInvalidArgument),
		errors.Is(err, order.ErrOutOfRange),
		errors.Is(err, order.ErrLimitReached),
		errors.Is(err, store.ErrUnknownTag),
		errors.Is(err, account.ErrWrongPassword),
		errors.Is(err, account.ErrPasswordsDoNotMatch),
		errors.Is(err, account.ErrPasswordTooWeak),
		errors.Is(err, account.ErrAlreadyConfirmed),
		errors.Is(err, vegan.ErrNotVegan),
		errors.Is(err, vegan.ErrEmptyIngredient),
		errors.Is(err, ErrInvalidJSON):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthRequired), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrNotAccountOwner),
		errors.Is(err, ErrEmailUnverified),
		errors.Is(err, ErrAdminRequired):
		return http.StatusForbidden
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, account.ErrUnknownEmail),
		errors.Is(err, tokens.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, vegan.ErrServiceUnavailable),
		errors.Is(err, vegan.ErrHTTPError),
		errors.Is(err, vegan.ErrMalformedResponse):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail aborts the request with the status that matches err
func fail(c *gin.Context, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		slog.Error("Request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			log.Error(err))
	}
	abortWithError(c, code, err.Error())
}

func badJSON(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest,
		fmt.Sprintf("%s: %v", ErrInvalidJSON, err))
}

func invalid(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest, err.Error())
}

func abortWithError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, api.ErrorResponse{
		Error:  msg,
		Status: code,
	})
}
