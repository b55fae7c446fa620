package order_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/larder/internal/order"
)

func TestParsePosition(t *testing.T) {
	good := map[any]int{
		3:                 3,
		int64(4):          4,
		int32(5):          5,
		6.0:               6,
		"7":               7,
		" 8 ":             8,
		json.Number("9"):  9,
		json.Number("-1"): -1,
	}
	for in, want := range good {
		got, err := order.ParsePosition(in)
		require.NoError(t, err, "%v", in)
		assert.Equal(t, want, got)
	}

	bad := []any{"", "three", "1.5", 1.5, json.Number("2.0"), nil, true}
	for _, in := range bad {
		_, err := order.ParsePosition(in)
		assert.ErrorIs(t, err, order.ErrInvalidArgument, "%v", in)
	}
}

func TestResolveChecksInOrder(t *testing.T) {
	p := order.ZeroReject

	pos, err := p.Resolve(3, 5)
	assert.NoError(t, err)
	assert.Equal(t, 3, pos)

	pos, err = p.Resolve("5", 5)
	assert.NoError(t, err)
	assert.Equal(t, 5, pos)

	_, err = p.Resolve(6, 5)
	assert.ErrorIs(t, err, order.ErrOutOfRange)
	assert.Contains(t, err.Error(), "new order can't exceed sibling count")

	_, err = p.Resolve(-1, 5)
	assert.ErrorIs(t, err, order.ErrInvalidArgument)

	_, err = p.Resolve(0, 5)
	assert.ErrorIs(t, err, order.ErrInvalidArgument)

	_, err = p.Resolve("x", 5)
	assert.ErrorIs(t, err, order.ErrInvalidArgument)

	_, err = p.Resolve(1, 0)
	assert.ErrorIs(t, err, order.ErrOutOfRange)
}

func TestResolveHugeTargets(t *testing.T) {
	p := order.ZeroReject

	tooBig := []any{
		1e300,
		int64(math.MaxInt64),
		"99999999999999999999",
		json.Number("99999999999999999999"),
	}
	for _, in := range tooBig {
		_, err := p.Resolve(in, 5)
		assert.ErrorIs(t, err, order.ErrOutOfRange, "%v", in)
	}

	tooSmall := []any{-1e300, "-99999999999999999999"}
	for _, in := range tooSmall {
		_, err := p.Resolve(in, 5)
		assert.ErrorIs(t, err, order.ErrInvalidArgument, "%v", in)
	}
}

func TestResolveZeroAsFirst(t *testing.T) {
	pos, err := order.ZeroAsFirst.Resolve(0, 4)
	assert.NoError(t, err)
	assert.Equal(t, 1, pos)

	_, err = order.ZeroAsFirst.Resolve(-2, 4)
	assert.ErrorIs(t, err, order.ErrInvalidArgument)
}

func TestParseZeroPolicy(t *testing.T) {
	p, err := order.ParseZeroPolicy(" Reject ")
	assert.NoError(t, err)
	assert.Equal(t, order.ZeroReject, p)

	p, err = order.ParseZeroPolicy("first")
	assert.NoError(t, err)
	assert.Equal(t, order.ZeroAsFirst, p)

	_, err = order.ParseZeroPolicy("last")
	assert.ErrorIs(t, err, order.ErrInvalidPolicy)
}

func TestNext(t *testing.T) {
	pos, err := order.Next(0)
	assert.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = order.Next(4)
	assert.NoError(t, err)
	assert.Equal(t, 5, pos)

	pos, err = order.Next(order.MaxPositions - 1)
	assert.NoError(t, err)
	assert.Equal(t, order.MaxPositions, pos)

	_, err = order.Next(order.MaxPositions)
	assert.ErrorIs(t, err, order.ErrLimitReached)
}

func TestPlan(t *testing.T) {
	r, ok := order.Plan(3, 5)
	assert.True(t, ok)
	assert.Equal(t, order.Range{Lo: 4, Hi: 5, Delta: -1}, r)

	r, ok = order.Plan(5, 2)
	assert.True(t, ok)
	assert.Equal(t, order.Range{Lo: 2, Hi: 4, Delta: 1}, r)

	_, ok = order.Plan(2, 2)
	assert.False(t, ok)
}

func TestClosing(t *testing.T) {
	r, ok := order.Closing(2, 5)
	assert.True(t, ok)
	assert.Equal(t, order.Range{Lo: 3, Hi: 5, Delta: -1}, r)

	_, ok = order.Closing(5, 5)
	assert.False(t, ok)
}
