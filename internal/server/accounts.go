package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/larder/internal/account"
	"github.com/kode4food/larder/pkg/api"
)

const (
	msgPasswordUpdated = "Password has been successfully updated!"
	msgResetSent       = "Email with further instructions was successfully sent!"
	msgConfirmSent     = "Message with link for the email confirmation was sent"
	msgEmailConfirmed  = "The email was confirmed!"
)

func (s *Server) changePassword(c *gin.Context) {
	var req api.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}

	err := s.accounts.ChangePassword(c.Request.Context(), currentUser(c),
		req.CurrentPassword, req.NewPassword, req.RepeatNewPassword)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: msgPasswordUpdated})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req api.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}

	if err := s.accounts.RequestReset(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: msgResetSent})
}

func (s *Server) completeReset(c *gin.Context) {
	var req api.NewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}

	err := s.accounts.CompleteReset(c.Request.Context(), c.Param("token"),
		req.NewPassword, req.RepeatNewPassword)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: msgPasswordUpdated})
}

func (s *Server) checkPasswordStrength(c *gin.Context) {
	var req api.PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, api.PasswordStrengthResponse{
		Strength: string(account.RateStrength(req.Password)),
	})
}

func (s *Server) sendConfirmEmail(c *gin.Context) {
	err := s.accounts.SendConfirmation(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: msgConfirmSent})
}

func (s *Server) confirmEmail(c *gin.Context) {
	err := s.accounts.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: msgEmailConfirmed})
}

func (s *Server) checkLoggedIn(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		c.JSON(http.StatusOK, api.LoggedInResponse{})
		return
	}
	c.JSON(http.StatusOK, api.LoggedInResponse{
		Username:      u.Username,
		Authenticated: true,
	})
}
