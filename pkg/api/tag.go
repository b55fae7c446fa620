package api

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Tag labels recipes; its slug is the primary key
	Tag struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	}

	// TagRequest carries the writable fields of a tag
	TagRequest struct {
		Name string `json:"name" binding:"required,max=75"`
	}
)

const MaxTagNameLength = 75

var (
	ErrTagNameEmpty   = errors.New("tag name empty")
	ErrTagNameTooLong = errors.New("tag name too long")
	ErrTagNameNoSlug  = errors.New("tag name has no usable characters")
)

// Validate checks the request and trims its name
func (r *TagRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrTagNameEmpty
	}
	if len(r.Name) > MaxTagNameLength {
		return fmt.Errorf("%w: %d > %d", ErrTagNameTooLong, len(r.Name),
			MaxTagNameLength)
	}
	if Slugify(r.Name) == "" {
		return fmt.Errorf("%w: %q", ErrTagNameNoSlug, r.Name)
	}
	return nil
}
