package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kode4food/larder/pkg/log"
)

type (
	// Reorderable is anything that holds a position within a parent
	Reorderable interface {
		ItemID() string
		ParentID() string
		Position() int
		SetPosition(int)
	}

	// Ranger is a durable collection of sequences, one per parent
	Ranger interface {
		// Name identifies the collection, e.g. "steps"
		Name() string

		// Atomic runs fn in a transaction that holds the parent exclusively.
		// The transaction commits only if fn returns nil. Returns
		// ErrNotFound if the parent does not exist
		Atomic(ctx context.Context, parentID string, fn func(Tx) error) error
	}

	// Tx is one parent's sequence inside a Ranger transaction
	Tx interface {
		Count(ctx context.Context) (int, error)

		// Position reads the stored position of an item. Returns
		// ErrNotFound if the item does not belong to the parent
		Position(ctx context.Context, id string) (int, error)

		Insert(ctx context.Context, item Reorderable) error
		SetPosition(ctx context.Context, id string, pos int) error

		// Shift adds r.Delta to every position in [r.Lo, r.Hi] except the
		// excluded item's, as a single bulk update
		Shift(ctx context.Context, r Range, exclude string) error

		Delete(ctx context.Context, id string) error
	}

	// Sequencer serializes and applies sequence mutations
	Sequencer struct {
		locks  *KeyedMutex
		policy ZeroPolicy
	}
)

// NewSequencer creates a Sequencer using the given zero position policy
func NewSequencer(policy ZeroPolicy) *Sequencer {
	return &Sequencer{
		locks:  NewKeyedMutex(),
		policy: policy,
	}
}

// Policy returns the zero position policy in effect
func (s *Sequencer) Policy() ZeroPolicy {
	return s.policy
}

// Append assigns item the next free position and inserts it
func (s *Sequencer) Append(
	ctx context.Context, r Ranger, item Reorderable,
) error {
	return s.atomic(ctx, r, item.ParentID(), func(tx Tx) error {
		count, err := tx.Count(ctx)
		if err != nil {
			return err
		}
		pos, err := Next(count)
		if err != nil {
			return err
		}
		item.SetPosition(pos)
		return tx.Insert(ctx, item)
	})
}

// Reorder moves item to target and shifts the siblings in between. Target
// is validated against the live sibling count before anything is written.
// Returns the resolved position
func (s *Sequencer) Reorder(
	ctx context.Context, r Ranger, item Reorderable, target any,
) (int, error) {
	var res int
	err := s.atomic(ctx, r, item.ParentID(), func(tx Tx) error {
		count, err := tx.Count(ctx)
		if err != nil {
			return err
		}
		old, err := tx.Position(ctx, item.ItemID())
		if err != nil {
			return err
		}
		pos, err := s.policy.Resolve(target, count)
		if err != nil {
			return err
		}

		res = pos
		shift, ok := Plan(old, pos)
		if !ok {
			return nil
		}
		if err := tx.SetPosition(ctx, item.ItemID(), pos); err != nil {
			return err
		}
		return tx.Shift(ctx, shift, item.ItemID())
	})
	if err != nil {
		return 0, err
	}

	item.SetPosition(res)
	slog.Debug("Item reordered",
		log.Sequence(r.Name()),
		log.RecipeID(item.ParentID()),
		log.ItemID(item.ItemID()),
		log.Position(res))
	return res, nil
}

// Remove deletes item and closes the gap it leaves
func (s *Sequencer) Remove(
	ctx context.Context, r Ranger, item Reorderable,
) error {
	return s.atomic(ctx, r, item.ParentID(), func(tx Tx) error {
		count, err := tx.Count(ctx)
		if err != nil {
			return err
		}
		pos, err := tx.Position(ctx, item.ItemID())
		if err != nil {
			return err
		}
		if err := tx.Delete(ctx, item.ItemID()); err != nil {
			return err
		}
		shift, ok := Closing(pos, count)
		if !ok {
			return nil
		}
		return tx.Shift(ctx, shift, item.ItemID())
	})
}

func (s *Sequencer) atomic(
	ctx context.Context, r Ranger, parentID string, fn func(Tx) error,
) error {
	key := fmt.Sprintf("%s/%s", r.Name(), parentID)
	unlock, err := s.locks.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return r.Atomic(ctx, parentID, fn)
}
