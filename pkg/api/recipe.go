package api

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Recipe is a published recipe owned by an author
	Recipe struct {
		Created  time.Time `json:"created"`
		Modified time.Time `json:"modified"`
		ID       RecipeID  `json:"id"`
		AuthorID UserID    `json:"-"`
		Author   string    `json:"author"`
		Title    string    `json:"title"`
		Slug     string    `json:"slug"`
		Body     string    `json:"body"`
		Tags     []string  `json:"tags"`
		Views    int       `json:"views"`
	}

	// RecipeRequest carries the writable fields of a recipe
	RecipeRequest struct {
		Title string   `json:"title" binding:"required,max=100"`
		Body  string   `json:"body" binding:"required"`
		Tags  []string `json:"tags"`
	}

	// RecipePatch carries a partial recipe update; nil fields are kept
	RecipePatch struct {
		Title *string   `json:"title" binding:"omitempty,max=100"`
		Body  *string   `json:"body"`
		Tags  *[]string `json:"tags"`
	}
)

const MaxTitleLength = 100

var (
	ErrTitleEmpty   = errors.New("recipe title empty")
	ErrTitleTooLong = errors.New("recipe title too long")
	ErrTitleNoSlug  = errors.New("recipe title has no usable characters")
	ErrBodyEmpty    = errors.New("recipe body empty")
)

// Ref returns the path reference for the recipe
func (r *Recipe) Ref() RecipeRef {
	return RecipeRef{Author: r.Author, Slug: r.Slug}
}

// Validate checks the request and normalizes its title
func (r *RecipeRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if err := validateTitle(r.Title); err != nil {
		return err
	}
	if strings.TrimSpace(r.Body) == "" {
		return ErrBodyEmpty
	}
	return nil
}

// Apply merges the patch into a full request based on the current recipe
func (p *RecipePatch) Apply(cur *Recipe) *RecipeRequest {
	res := &RecipeRequest{
		Title: cur.Title,
		Body:  cur.Body,
		Tags:  cur.Tags,
	}
	if p.Title != nil {
		res.Title = *p.Title
	}
	if p.Body != nil {
		res.Body = *p.Body
	}
	if p.Tags != nil {
		res.Tags = *p.Tags
	}
	return res
}

func validateTitle(title string) error {
	if title == "" {
		return ErrTitleEmpty
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, len(title),
			MaxTitleLength)
	}
	if Slugify(title) == "" {
		return fmt.Errorf("%w: %q", ErrTitleNoSlug, title)
	}
	return nil
}
