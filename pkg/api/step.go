package api

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type (
	// Step is one instruction of a recipe, kept in a dense 1-based order
	Step struct {
		ID          ItemID   `json:"id"`
		RecipeID    RecipeID `json:"recipe_id"`
		Instruction string   `json:"instruction"`
		Order       int      `json:"order"`
	}

	// Image is a picture attached to a recipe, ordered like steps
	Image struct {
		ID         ItemID   `json:"id"`
		RecipeID   RecipeID `json:"recipe_id"`
		URL        string   `json:"image_url"`
		Identifier string   `json:"-"`
		Order      int      `json:"order"`
	}

	// StepRequest carries the writable fields of a step
	StepRequest struct {
		Instruction string `json:"instruction" binding:"required,max=1000"`
	}

	// ImageRequest carries the writable fields of an image
	ImageRequest struct {
		URL string `json:"image_url" binding:"required"`
	}
)

const MaxInstructionLength = 1000

var (
	ErrInstructionEmpty   = errors.New("step instruction empty")
	ErrInstructionTooLong = errors.New("step instruction too long")
	ErrImageURLEmpty      = errors.New("image url empty")
	ErrImageURLInvalid    = errors.New("image url invalid")
)

// Validate checks the request and trims its instruction
func (r *StepRequest) Validate() error {
	r.Instruction = strings.TrimSpace(r.Instruction)
	if r.Instruction == "" {
		return ErrInstructionEmpty
	}
	if len(r.Instruction) > MaxInstructionLength {
		return fmt.Errorf("%w: %d > %d", ErrInstructionTooLong,
			len(r.Instruction), MaxInstructionLength)
	}
	return nil
}

// Validate checks that the image URL is absolute
func (r *ImageRequest) Validate() error {
	r.URL = strings.TrimSpace(r.URL)
	if r.URL == "" {
		return ErrImageURLEmpty
	}
	u, err := url.Parse(r.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrImageURLInvalid, r.URL)
	}
	return nil
}

// ImageIdentifier derives the per-recipe duplicate key for an image URL
func ImageIdentifier(u string) string {
	sum := md5.Sum([]byte(strings.TrimSpace(u)))
	return hex.EncodeToString(sum[:])
}

func (s *Step) ItemID() string {
	return string(s.ID)
}

func (s *Step) ParentID() string {
	return string(s.RecipeID)
}

func (s *Step) Position() int {
	return s.Order
}

func (s *Step) SetPosition(pos int) {
	s.Order = pos
}

func (i *Image) ItemID() string {
	return string(i.ID)
}

func (i *Image) ParentID() string {
	return string(i.RecipeID)
}

func (i *Image) Position() int {
	return i.Order
}

func (i *Image) SetPosition(pos int) {
	i.Order = pos
}
