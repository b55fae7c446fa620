package api

import "encoding/json"

type (
	// RecipeResponse is a recipe together with the paths of its resources
	RecipeResponse struct {
		*Recipe
		URL         string `json:"url"`
		Images      string `json:"image_listing"`
		Ingredients string `json:"ingredient_listing"`
		Steps       string `json:"step_listing"`
	}

	// RecipesListResponse contains recipes, newest first
	RecipesListResponse struct {
		Recipes []*RecipeResponse `json:"recipes"`
		Count   int               `json:"count"`
	}

	// StepsListResponse contains the steps of a recipe in order
	StepsListResponse struct {
		Steps []*Step `json:"steps"`
		Count int     `json:"count"`
	}

	// ImagesListResponse contains the images of a recipe in order
	ImagesListResponse struct {
		Images []*Image `json:"images"`
		Count  int      `json:"count"`
	}

	// IngredientsListResponse contains the ingredients of a recipe
	IngredientsListResponse struct {
		Ingredients []*Ingredient `json:"ingredients"`
		Count       int           `json:"count"`
	}

	// TagsListResponse contains all tags ordered by name
	TagsListResponse struct {
		Tags  []*Tag `json:"tags"`
		Count int    `json:"count"`
	}

	// ChangeOrderRequest asks to move a step or image to a new position.
	// The order may be sent as a JSON number or a numeric string
	ChangeOrderRequest struct {
		Order json.Number `json:"order" binding:"required"`
	}

	// ChangeOrderResponse echoes the validated position
	ChangeOrderResponse struct {
		Order int `json:"order"`
	}

	// FavouritesRequest replaces the favourite recipes of an account
	FavouritesRequest struct {
		Recipes []RecipeRef `json:"recipes"`
	}

	// FavouritesResponse lists the favourite recipes of an account
	FavouritesResponse struct {
		Owner   string      `json:"owner"`
		Recipes []RecipeRef `json:"recipes"`
	}

	// ChangePasswordRequest replaces the password of the current user
	ChangePasswordRequest struct {
		CurrentPassword   string `json:"current_password" binding:"required"`
		NewPassword       string `json:"new_password" binding:"required"`
		RepeatNewPassword string `json:"repeat_new_password" binding:"required"`
	}

	// EmailRequest starts a password reset for an address
	EmailRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	// NewPasswordRequest completes a password reset
	NewPasswordRequest struct {
		NewPassword       string `json:"new_password" binding:"required"`
		RepeatNewPassword string `json:"repeat_new_password" binding:"required"`
	}

	// PasswordRequest carries a password to be rated
	PasswordRequest struct {
		Password string `json:"password" binding:"required"`
	}

	// PasswordStrengthResponse rates a password
	PasswordStrengthResponse struct {
		Strength string `json:"strength"`
	}

	// LoggedInResponse reports whether the request carried a valid token
	LoggedInResponse struct {
		Username      string `json:"username,omitempty"`
		Authenticated bool   `json:"authenticated"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Version string `json:"version"`
		Status  string `json:"status"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)
