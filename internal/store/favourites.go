package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kode4food/larder/pkg/api"
)

// Favourites returns the recipes an account marked as favourite
func (s *Store) Favourites(
	ctx context.Context, id api.UserID,
) ([]api.RecipeRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.username, r.slug FROM favourites f
		JOIN recipes r ON r.id = f.recipe_id
		JOIN users u ON u.id = r.author_id
		WHERE f.user_id = ?
		ORDER BY u.username, r.slug`, id,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res := []api.RecipeRef{}
	for rows.Next() {
		var ref api.RecipeRef
		if err := rows.Scan(&ref.Author, &ref.Slug); err != nil {
			return nil, err
		}
		res = append(res, ref)
	}
	return res, rows.Err()
}

// SetFavourites replaces the favourite recipes of an account. Returns
// ErrNotFound if any referenced recipe does not exist
func (s *Store) SetFavourites(
	ctx context.Context, id api.UserID, refs []api.RecipeRef,
) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM favourites WHERE user_id = ?`, id,
		); err != nil {
			return err
		}

		seen := map[string]bool{}
		for _, ref := range refs {
			var recipe string
			err := tx.QueryRowContext(ctx,
				`SELECT r.id FROM recipes r JOIN users u ON u.id = r.author_id
				WHERE u.username = ? AND r.slug = ?`, ref.Author, ref.Slug,
			).Scan(&recipe)
			if err != nil {
				return notFound(err,
					fmt.Sprintf("recipe %s/%s", ref.Author, ref.Slug))
			}
			if seen[recipe] {
				continue
			}
			seen[recipe] = true
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO favourites (user_id, recipe_id) VALUES (?, ?)`,
				id, recipe,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
