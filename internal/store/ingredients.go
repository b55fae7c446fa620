package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kode4food/larder/pkg/api"
)

const ingredientSelect = `SELECT id, recipe_id, name, quantity, unit,
	additional_info FROM ingredients`

// CreateIngredient inserts an ingredient for a recipe
func (s *Store) CreateIngredient(ctx context.Context, in *api.Ingredient) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingredients (id, recipe_id, name, quantity, unit,
			additional_info)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.RecipeID, in.Name, in.Quantity, unitArg(in.Unit),
		nullString(in.AdditionalInfo),
	)
	return err
}

// ListIngredients returns the ingredients of a recipe by name
func (s *Store) ListIngredients(
	ctx context.Context, id api.RecipeID,
) ([]*api.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx,
		ingredientSelect+` WHERE recipe_id = ? ORDER BY name, id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res := []*api.Ingredient{}
	for rows.Next() {
		in, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, in)
	}
	return res, rows.Err()
}

// IngredientByID looks up one ingredient of a recipe
func (s *Store) IngredientByID(
	ctx context.Context, recipe api.RecipeID, id api.ItemID,
) (*api.Ingredient, error) {
	row := s.db.QueryRowContext(ctx,
		ingredientSelect+` WHERE recipe_id = ? AND id = ?`, recipe, id,
	)
	in, err := scanIngredient(row)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("ingredient %s", id))
	}
	return in, nil
}

// UpdateIngredient writes every mutable column of an ingredient
func (s *Store) UpdateIngredient(ctx context.Context, in *api.Ingredient) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ingredients SET name = ?, quantity = ?, unit = ?,
			additional_info = ?
		WHERE recipe_id = ? AND id = ?`,
		in.Name, in.Quantity, unitArg(in.Unit), nullString(in.AdditionalInfo),
		in.RecipeID, in.ID,
	)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("ingredient %s", in.ID))
}

// DeleteIngredient removes one ingredient of a recipe
func (s *Store) DeleteIngredient(
	ctx context.Context, recipe api.RecipeID, id api.ItemID,
) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM ingredients WHERE recipe_id = ? AND id = ?`, recipe, id,
	)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("ingredient %s", id))
}

func scanIngredient(row scanner) (*api.Ingredient, error) {
	var in api.Ingredient
	var qty sql.NullFloat64
	var unit, info sql.NullString
	err := row.Scan(&in.ID, &in.RecipeID, &in.Name, &qty, &unit, &info)
	if err != nil {
		return nil, err
	}
	if qty.Valid {
		in.Quantity = &qty.Float64
	}
	if unit.Valid {
		u := api.Unit(unit.String)
		in.Unit = &u
	}
	in.AdditionalInfo = stringPtr(info)
	return &in, nil
}

func unitArg(u *api.Unit) sql.NullString {
	if u == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*u), Valid: true}
}
