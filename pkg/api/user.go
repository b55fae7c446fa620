package api

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

type (
	// User is an account as stored by the service
	User struct {
		Joined         time.Time `json:"-"`
		ID             UserID    `json:"-"`
		Username       string    `json:"username"`
		Email          string    `json:"email"`
		PasswordHash   string    `json:"-"`
		Token          string    `json:"-"`
		Bio            string    `json:"-"`
		Avatar         string    `json:"-"`
		IsAdmin        bool      `json:"-"`
		EmailConfirmed bool      `json:"-"`
	}

	// Profile holds the public, editable part of an account
	Profile struct {
		Bio    string `json:"bio"`
		Avatar string `json:"avatar"`
	}

	// UserView is the representation of an account returned by the API.
	// Email and Favourites are only present for the account owner
	UserView struct {
		Profile    Profile     `json:"profile"`
		Username   string      `json:"username"`
		Email      string      `json:"email,omitempty"`
		URL        string      `json:"url"`
		Favourites string      `json:"favourite_recipes,omitempty"`
		Recipes    []RecipeRef `json:"recipes,omitempty"`
	}

	// UserUpdateRequest carries the writable fields of an account
	UserUpdateRequest struct {
		Profile  *Profile `json:"profile"`
		Username *string  `json:"username" binding:"omitempty,max=150"`
		Email    *string  `json:"email" binding:"omitempty,email"`
	}

	// UsersListResponse contains the visible accounts
	UsersListResponse struct {
		Users []*UserView `json:"users"`
		Count int         `json:"count"`
	}
)

const MaxUsernameLength = 150

var (
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameInvalid = errors.New(
		"username may contain only letters, digits and @/./+/-/_",
	)
	ErrEmailInvalid = errors.New("email invalid")
)

var validUsername = regexp.MustCompile(`^[\w.@+-]+$`)

// ValidateUsername checks a username against the allowed character set
func ValidateUsername(name string) error {
	if name == "" {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLength || !validUsername.MatchString(name) {
		return ErrUsernameInvalid
	}
	return nil
}

// NormalizeEmail validates an address and returns it lowercased
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrEmailInvalid
	}
	return strings.ToLower(email), nil
}

// Validate checks the request fields that are present
func (r *UserUpdateRequest) Validate() error {
	if r.Username != nil {
		*r.Username = strings.TrimSpace(*r.Username)
		if err := ValidateUsername(*r.Username); err != nil {
			return err
		}
	}
	if r.Email != nil {
		email, err := NormalizeEmail(*r.Email)
		if err != nil {
			return err
		}
		*r.Email = email
	}
	return nil
}
