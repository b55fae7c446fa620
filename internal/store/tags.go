package store

import (
	"context"
	"fmt"

	"github.com/kode4food/larder/pkg/api"
)

// CreateTag inserts a tag. Returns ErrConflict if its slug or name is
// taken
func (s *Store) CreateTag(ctx context.Context, t *api.Tag) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (slug, name) VALUES (?, ?)`, t.Slug, t.Name,
	)
	return s.conflict(err, fmt.Sprintf("tag %q", t.Name))
}

// ListTags returns every tag ordered by name
func (s *Store) ListTags(ctx context.Context) ([]*api.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, name FROM tags ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res := []*api.Tag{}
	for rows.Next() {
		var t api.Tag
		if err := rows.Scan(&t.Slug, &t.Name); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

// TagBySlug looks up a tag by its slug
func (s *Store) TagBySlug(ctx context.Context, slug string) (*api.Tag, error) {
	var t api.Tag
	err := s.db.QueryRowContext(ctx,
		`SELECT slug, name FROM tags WHERE slug = ?`, slug,
	).Scan(&t.Slug, &t.Name)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("tag %q", slug))
	}
	return &t, nil
}

// RenameTag replaces the tag stored under slug. Recipe links follow the
// new slug
func (s *Store) RenameTag(ctx context.Context, slug string, t *api.Tag) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tags SET slug = ?, name = ? WHERE slug = ?`,
		t.Slug, t.Name, slug,
	)
	if err != nil {
		return s.conflict(err, fmt.Sprintf("tag %q", t.Name))
	}
	return expectRow(res, fmt.Sprintf("tag %q", slug))
}

// DeleteTag removes a tag and its recipe links
func (s *Store) DeleteTag(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE slug = ?`, slug)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("tag %q", slug))
}
