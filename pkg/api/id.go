package api

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type (
	// RecipeID is a unique identifier for a recipe
	RecipeID string

	// UserID is a unique identifier for a user account
	UserID string

	// ItemID identifies a recipe child resource (step, image, ingredient)
	ItemID string

	// RecipeRef locates a recipe the way the API paths do
	RecipeRef struct {
		Author string `json:"author"`
		Slug   string `json:"slug"`
	}
)

// InvalidSlugChars matches characters not permitted in slugs. Valid
// characters are: letters, digits, underscore, hyphen, space
var InvalidSlugChars = regexp.MustCompile(`[^a-z0-9_\- ]`)

var dashRuns = regexp.MustCompile(`[-\s]+`)

// Slugify lowercases a title, removes invalid characters, collapses spaces
// and hyphens into single hyphens, and trims leading and trailing hyphens
func Slugify(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	sanitized := InvalidSlugChars.ReplaceAllString(lower, "")
	sanitized = dashRuns.ReplaceAllString(sanitized, "-")
	return strings.Trim(sanitized, "-_")
}

// NewRecipeID returns a fresh random recipe identifier
func NewRecipeID() RecipeID {
	return RecipeID(uuid.NewString())
}

// NewUserID returns a fresh random user identifier
func NewUserID() UserID {
	return UserID(uuid.NewString())
}

// NewItemID returns a fresh random child resource identifier
func NewItemID() ItemID {
	return ItemID(uuid.NewString())
}

// ParseItemID reports whether s is a well-formed item identifier
func ParseItemID(s string) (ItemID, bool) {
	if _, err := uuid.Parse(s); err != nil {
		return "", false
	}
	return ItemID(s), true
}
