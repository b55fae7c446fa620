package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kode4food/larder/pkg/util"
)

type (
	// Unit is a measurement unit for an ingredient quantity
	Unit string

	// Ingredient is a named, optionally measured, recipe component
	Ingredient struct {
		Quantity       *float64 `json:"quantity"`
		Unit           *Unit    `json:"unit"`
		AdditionalInfo *string  `json:"additional_informations"`
		ID             ItemID   `json:"id"`
		RecipeID       RecipeID `json:"recipe_id"`
		Name           string   `json:"name"`
	}

	// IngredientRequest carries the writable fields of an ingredient
	IngredientRequest struct {
		Quantity       *float64 `json:"quantity" binding:"omitempty,gte=0"`
		Unit           *Unit    `json:"unit"`
		AdditionalInfo *string  `json:"additional_informations" binding:"omitempty,max=100"`
		Name           string   `json:"name" binding:"required,max=50"`
	}
)

const (
	UnitGrams       Unit = "g"
	UnitKilograms   Unit = "kg"
	UnitMilligrams  Unit = "mg"
	UnitOunces      Unit = "oz"
	UnitPounds      Unit = "lb"
	UnitCups        Unit = "cup"
	UnitTeaspoons   Unit = "tsp"
	UnitTablespoons Unit = "tbsp"
	UnitMilliliters Unit = "ml"
	UnitLiters      Unit = "l"
	UnitPieces      Unit = "piece"

	MaxIngredientNameLength = 50
	MaxAdditionalInfoLength = 100
)

var (
	ErrIngredientNameEmpty   = errors.New("ingredient name empty")
	ErrIngredientNameTooLong = errors.New("ingredient name too long")
	ErrInvalidUnit           = errors.New("invalid unit")
	ErrNegativeQuantity      = errors.New("quantity cannot be negative")
	ErrAdditionalInfoTooLong = errors.New("additional information too long")
)

var validUnits = util.SetOf(
	UnitGrams, UnitKilograms, UnitMilligrams, UnitOunces, UnitPounds,
	UnitCups, UnitTeaspoons, UnitTablespoons, UnitMilliliters, UnitLiters,
	UnitPieces,
)

// Validate checks the request and trims its name
func (r *IngredientRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrIngredientNameEmpty
	}
	if len(r.Name) > MaxIngredientNameLength {
		return fmt.Errorf("%w: %d > %d", ErrIngredientNameTooLong,
			len(r.Name), MaxIngredientNameLength)
	}
	if r.Unit != nil && !validUnits.Contains(*r.Unit) {
		return fmt.Errorf("%w: %s", ErrInvalidUnit, *r.Unit)
	}
	if r.Quantity != nil && *r.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if r.AdditionalInfo != nil &&
		len(*r.AdditionalInfo) > MaxAdditionalInfoLength {
		return ErrAdditionalInfoTooLong
	}
	return nil
}
