package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kode4food/larder/pkg/api"
	"github.com/kode4food/larder/pkg/util"
)

const recipeSelect = `SELECT r.id, r.author_id, COALESCE(u.username, ''),
	r.title, r.slug, r.body, r.views, r.created, r.modified
	FROM recipes r LEFT JOIN users u ON u.id = r.author_id`

// CreateRecipe inserts a recipe and its tag links. Returns ErrConflict when
// the author already has a recipe with the same title or slug, and
// ErrUnknownTag when a tag slug does not exist
func (s *Store) CreateRecipe(ctx context.Context, r *api.Recipe) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipes (id, author_id, title, slug, body, views,
				created, modified)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.AuthorID, r.Title, r.Slug, r.Body, r.Views,
			toMillis(r.Created), toMillis(r.Modified),
		)
		if err != nil {
			return s.conflict(err, fmt.Sprintf("recipe %q", r.Title))
		}
		return setRecipeTags(ctx, tx, r)
	})
}

// RecipeByRef looks up a recipe by its author's username and its slug
func (s *Store) RecipeByRef(
	ctx context.Context, ref api.RecipeRef,
) (*api.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		recipeSelect+` WHERE u.username = ? AND r.slug = ?`,
		ref.Author, ref.Slug,
	)
	r, err := scanRecipe(row)
	if err != nil {
		return nil, notFound(err,
			fmt.Sprintf("recipe %s/%s", ref.Author, ref.Slug))
	}
	if r.Tags, err = s.recipeTags(ctx, r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRecipes returns every recipe, newest first
func (s *Store) ListRecipes(ctx context.Context) ([]*api.Recipe, error) {
	return s.listRecipes(ctx, recipeSelect+` ORDER BY r.created DESC, r.id`)
}

// RecipesByAuthor returns the recipes of one account, newest first
func (s *Store) RecipesByAuthor(
	ctx context.Context, id api.UserID,
) ([]*api.Recipe, error) {
	return s.listRecipes(ctx,
		recipeSelect+` WHERE r.author_id = ? ORDER BY r.created DESC, r.id`,
		id,
	)
}

// UpdateRecipe writes the title, slug, body, modified time and tags of a
// recipe
func (s *Store) UpdateRecipe(ctx context.Context, r *api.Recipe) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE recipes SET title = ?, slug = ?, body = ?, modified = ?
			WHERE id = ?`,
			r.Title, r.Slug, r.Body, toMillis(r.Modified), r.ID,
		)
		if err != nil {
			return s.conflict(err, fmt.Sprintf("recipe %q", r.Title))
		}
		if err := expectRow(res, fmt.Sprintf("recipe %s", r.ID)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM recipe_tags WHERE recipe_id = ?`, r.ID,
		); err != nil {
			return err
		}
		return setRecipeTags(ctx, tx, r)
	})
}

// IncrementViews adds one to the view counter of a recipe in a single
// statement so concurrent readers never lose a count
func (s *Store) IncrementViews(ctx context.Context, id api.RecipeID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recipes SET views = views + 1 WHERE id = ?`, id,
	)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("recipe %s", id))
}

// DeleteRecipe removes a recipe together with its child resources
func (s *Store) DeleteRecipe(ctx context.Context, id api.RecipeID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("recipe %s", id))
}

func (s *Store) listRecipes(
	ctx context.Context, query string, args ...any,
) ([]*api.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []*api.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, r := range res {
		if r.Tags, err = s.recipeTags(ctx, r.ID); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Store) recipeTags(
	ctx context.Context, id api.RecipeID,
) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag_slug FROM recipe_tags WHERE recipe_id = ?
		ORDER BY tag_slug`, id,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res := []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		res = append(res, slug)
	}
	return res, rows.Err()
}

func setRecipeTags(ctx context.Context, tx *sql.Tx, r *api.Recipe) error {
	slugs := util.Sorted(util.SetOf(r.Tags...))
	for _, slug := range slugs {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tags WHERE slug = ?`, slug,
		).Scan(&n)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %q", ErrUnknownTag, slug)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_slug) VALUES (?, ?)`,
			r.ID, slug,
		); err != nil {
			return err
		}
	}
	r.Tags = slugs
	return nil
}

func scanRecipe(row scanner) (*api.Recipe, error) {
	var r api.Recipe
	var author sql.NullString
	var created, modified int64
	err := row.Scan(&r.ID, &author, &r.Author, &r.Title, &r.Slug, &r.Body,
		&r.Views, &created, &modified)
	if err != nil {
		return nil, err
	}
	r.AuthorID = api.UserID(author.String)
	r.Created = fromMillis(created)
	r.Modified = fromMillis(modified)
	return &r, nil
}
