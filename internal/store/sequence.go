package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kode4food/larder/internal/order"
	"github.com/kode4food/larder/pkg/api"
)

type (
	// sequence is an ordered child table of recipes. It implements
	// order.Ranger
	sequence struct {
		store *Store
		table string
	}

	sequenceTx struct {
		seq    *sequence
		tx     *sql.Tx
		parent string
	}
)

const (
	stepsTable  = "steps"
	imagesTable = "images"
)

var (
	_ order.Ranger = (*sequence)(nil)
	_ order.Tx     = (*sequenceTx)(nil)
)

// Steps returns the ordered step collection
func (s *Store) Steps() order.Ranger {
	return &sequence{store: s, table: stepsTable}
}

// Images returns the ordered image collection
func (s *Store) Images() order.Ranger {
	return &sequence{store: s, table: imagesTable}
}

func (q *sequence) Name() string {
	return q.table
}

// Atomic begins a transaction, locks the parent recipe row and runs fn.
// On SQLite the transaction already holds the write lock (BEGIN
// IMMEDIATE); on MySQL the recipe row is locked with SELECT ... FOR UPDATE
func (q *sequence) Atomic(
	ctx context.Context, parentID string, fn func(order.Tx) error,
) error {
	return q.store.inTx(ctx, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx, q.store.dialect.lockRecipe, parentID).
			Scan(&id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: recipe %s", order.ErrNotFound, parentID)
			}
			return err
		}
		return fn(&sequenceTx{seq: q, tx: tx, parent: parentID})
	})
}

func (t *sequenceTx) Count(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+t.seq.table+` WHERE recipe_id = ?`, t.parent,
	).Scan(&n)
	return n, err
}

func (t *sequenceTx) Position(ctx context.Context, id string) (int, error) {
	var pos int
	err := t.tx.QueryRowContext(ctx,
		`SELECT position FROM `+t.seq.table+`
		WHERE recipe_id = ? AND id = ?`, t.parent, id,
	).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s %s", order.ErrNotFound,
			t.seq.table, id)
	}
	return pos, err
}

func (t *sequenceTx) Insert(ctx context.Context, item order.Reorderable) error {
	switch it := item.(type) {
	case *api.Step:
		if err := instructionFree(ctx, t.tx, t.parent, it); err != nil {
			return err
		}
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO steps (id, recipe_id, instruction, position)
			VALUES (?, ?, ?, ?)`,
			it.ID, t.parent, it.Instruction, it.Order,
		)
		return err
	case *api.Image:
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO images (id, recipe_id, url, unique_identifier,
				position)
			VALUES (?, ?, ?, ?, ?)`,
			it.ID, t.parent, it.URL, it.Identifier, it.Order,
		)
		return t.seq.store.conflict(err, fmt.Sprintf("image %q", it.URL))
	default:
		return fmt.Errorf("%w: %T in %s", ErrUnexpectedItemType, item,
			t.seq.table)
	}
}

func (t *sequenceTx) SetPosition(
	ctx context.Context, id string, pos int,
) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE `+t.seq.table+` SET position = ?
		WHERE recipe_id = ? AND id = ?`, pos, t.parent, id,
	)
	return err
}

// Shift moves a whole span of siblings with one statement
func (t *sequenceTx) Shift(
	ctx context.Context, r order.Range, exclude string,
) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE `+t.seq.table+` SET position = position + ?
		WHERE recipe_id = ? AND position BETWEEN ? AND ? AND id <> ?`,
		r.Delta, t.parent, r.Lo, r.Hi, exclude,
	)
	return err
}

func (t *sequenceTx) Delete(ctx context.Context, id string) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM `+t.seq.table+` WHERE recipe_id = ? AND id = ?`,
		t.parent, id,
	)
	return err
}

// ListSteps returns the steps of a recipe in order
func (s *Store) ListSteps(
	ctx context.Context, id api.RecipeID,
) ([]*api.Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, recipe_id, instruction, position FROM steps
		WHERE recipe_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res := []*api.Step{}
	for rows.Next() {
		var st api.Step
		err := rows.Scan(&st.ID, &st.RecipeID, &st.Instruction, &st.Order)
		if err != nil {
			return nil, err
		}
		res = append(res, &st)
	}
	return res, rows.Err()
}

// StepByID looks up one step of a recipe
func (s *Store) StepByID(
	ctx context.Context, recipe api.RecipeID, id api.ItemID,
) (*api.Step, error) {
	var st api.Step
	err := s.db.QueryRowContext(ctx,
		`SELECT id, recipe_id, instruction, position FROM steps
		WHERE recipe_id = ? AND id = ?`, recipe, id,
	).Scan(&st.ID, &st.RecipeID, &st.Instruction, &st.Order)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("step %s", id))
	}
	return &st, nil
}

// UpdateStep replaces the instruction of a step. Returns ErrConflict if
// another step of the recipe has the same instruction
func (s *Store) UpdateStep(ctx context.Context, st *api.Step) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := instructionFree(ctx, tx, string(st.RecipeID), st); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE steps SET instruction = ? WHERE recipe_id = ? AND id = ?`,
			st.Instruction, st.RecipeID, st.ID,
		)
		if err != nil {
			return err
		}
		return expectRow(res, fmt.Sprintf("step %s", st.ID))
	})
}

// ListImages returns the images of a recipe in order
func (s *Store) ListImages(
	ctx context.Context, id api.RecipeID,
) ([]*api.Image, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, recipe_id, url, unique_identifier, position FROM images
		WHERE recipe_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res := []*api.Image{}
	for rows.Next() {
		var im api.Image
		err := rows.Scan(&im.ID, &im.RecipeID, &im.URL, &im.Identifier,
			&im.Order)
		if err != nil {
			return nil, err
		}
		res = append(res, &im)
	}
	return res, rows.Err()
}

// ImageByID looks up one image of a recipe
func (s *Store) ImageByID(
	ctx context.Context, recipe api.RecipeID, id api.ItemID,
) (*api.Image, error) {
	var im api.Image
	err := s.db.QueryRowContext(ctx,
		`SELECT id, recipe_id, url, unique_identifier, position FROM images
		WHERE recipe_id = ? AND id = ?`, recipe, id,
	).Scan(&im.ID, &im.RecipeID, &im.URL, &im.Identifier, &im.Order)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("image %s", id))
	}
	return &im, nil
}

// UpdateImage replaces the URL of an image. Returns ErrConflict if the
// recipe already has an image with the same URL
func (s *Store) UpdateImage(ctx context.Context, im *api.Image) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE images SET url = ?, unique_identifier = ?
		WHERE recipe_id = ? AND id = ?`,
		im.URL, im.Identifier, im.RecipeID, im.ID,
	)
	if err != nil {
		return s.conflict(err, fmt.Sprintf("image %q", im.URL))
	}
	return expectRow(res, fmt.Sprintf("image %s", im.ID))
}

func instructionFree(
	ctx context.Context, tx *sql.Tx, recipe string, st *api.Step,
) error {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM steps
		WHERE recipe_id = ? AND instruction = ? AND id <> ?`,
		recipe, st.Instruction, st.ID,
	).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: step %q", ErrConflict, st.Instruction)
	}
	return nil
}
