// Package account implements the password and email confirmation flows of
// user accounts, and creates accounts for the command line
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kode4food/larder/internal/mail"
	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/internal/tokens"
	"github.com/kode4food/larder/pkg/api"
	"github.com/kode4food/larder/pkg/log"
)

type (
	// Users is the account storage the flows need
	Users interface {
		CreateUser(ctx context.Context, u *api.User) error
		UserByID(ctx context.Context, id api.UserID) (*api.User, error)
		UserByEmail(ctx context.Context, email string) (*api.User, error)
		UpdateUser(ctx context.Context, u *api.User) error
	}

	// Tokens issues and redeems one-time tokens
	Tokens interface {
		Issue(
			ctx context.Context, p tokens.Purpose, id api.UserID,
		) (string, error)
		Redeem(
			ctx context.Context, p tokens.Purpose, token string,
		) (api.UserID, error)
	}

	// Service runs the account flows
	Service struct {
		users   Users
		tokens  Tokens
		mailer  mail.Mailer
		baseURL string
	}

	// NewUser describes an account created from the command line
	NewUser struct {
		Username string
		Email    string
		Password string
		IsAdmin  bool
	}
)

const (
	ResetPasswordPath = "/api/users/reset-password-complete/"
	ConfirmEmailPath  = "/api/users/confirm-email/"

	resetSubject   = "Reset your password on Larder"
	confirmSubject = "Confirm your email"
)

var (
	ErrWrongPassword    = errors.New("the current password is invalid")
	ErrUnknownEmail     = errors.New("user with given email address does not exist")
	ErrAlreadyConfirmed = errors.New("this email was already confirmed")
)

// NewService creates the account flows. Links in outgoing mail point at
// baseURL
func NewService(
	users Users, tok Tokens, mailer mail.Mailer, baseURL string,
) *Service {
	return &Service{
		users:   users,
		tokens:  tok,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CreateUser stores a new account with a hashed password and a fresh API
// token. Accounts created this way have a confirmed email
func (s *Service) CreateUser(
	ctx context.Context, nu *NewUser,
) (*api.User, error) {
	name := strings.TrimSpace(nu.Username)
	if err := api.ValidateUsername(name); err != nil {
		return nil, err
	}
	email, err := api.NormalizeEmail(nu.Email)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(nu.Password)
	if err != nil {
		return nil, err
	}
	token, err := NewAPIToken()
	if err != nil {
		return nil, err
	}

	u := &api.User{
		ID:             api.NewUserID(),
		Username:       name,
		Email:          email,
		PasswordHash:   hash,
		Token:          token,
		IsAdmin:        nu.IsAdmin,
		EmailConfirmed: true,
		Joined:         time.Now(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	slog.Info("User created",
		log.UserID(u.ID),
		log.Username(u.Username))
	return u, nil
}

// ChangePassword replaces the password of u after checking the current one
func (s *Service) ChangePassword(
	ctx context.Context, u *api.User, current, password, repeat string,
) error {
	if !VerifyPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	if err := CheckNewPassword(password, repeat); err != nil {
		return err
	}
	return s.setPassword(ctx, u, password)
}

// RequestReset mails a password reset link to the owner of email
func (s *Service) RequestReset(ctx context.Context, email string) error {
	u, err := s.users.UserByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownEmail, email)
	}
	if err != nil {
		return err
	}

	token, err := s.tokens.Issue(ctx, tokens.ResetPassword, u.ID)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, mail.Message{
		To:      u.Email,
		Subject: resetSubject,
		Body: fmt.Sprintf("Click on this link to reset your password: %s",
			s.link(ResetPasswordPath, token)),
	})
}

// CompleteReset sets a new password for the account a reset token was
// issued to. The token is only spent once the new password is acceptable
func (s *Service) CompleteReset(
	ctx context.Context, token, password, repeat string,
) error {
	if err := CheckNewPassword(password, repeat); err != nil {
		return err
	}
	id, err := s.tokens.Redeem(ctx, tokens.ResetPassword, token)
	if err != nil {
		return err
	}
	u, err := s.users.UserByID(ctx, id)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, u, password)
}

// SendConfirmation mails an email confirmation link to u
func (s *Service) SendConfirmation(ctx context.Context, u *api.User) error {
	if u.EmailConfirmed {
		return ErrAlreadyConfirmed
	}
	token, err := s.tokens.Issue(ctx, tokens.ConfirmEmail, u.ID)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, mail.Message{
		To:      u.Email,
		Subject: confirmSubject,
		Body: fmt.Sprintf("Confirm your email by clicking this link: %s",
			s.link(ConfirmEmailPath, token)),
	})
}

// ConfirmEmail marks the email of the account a token was issued to as
// confirmed
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	id, err := s.tokens.Redeem(ctx, tokens.ConfirmEmail, token)
	if err != nil {
		return err
	}
	u, err := s.users.UserByID(ctx, id)
	if err != nil {
		return err
	}
	if u.EmailConfirmed {
		return nil
	}
	u.EmailConfirmed = true
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return err
	}
	slog.Info("Email confirmed",
		log.UserID(u.ID))
	return nil
}

func (s *Service) setPassword(
	ctx context.Context, u *api.User, password string,
) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return err
	}
	slog.Info("Password changed",
		log.UserID(u.ID))
	return nil
}

func (s *Service) link(path, token string) string {
	return s.baseURL + path + token
}
