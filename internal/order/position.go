package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type (
	// ZeroPolicy decides what a reorder to position 0 means
	ZeroPolicy string

	// Range is an inclusive span of positions shifted by Delta
	Range struct {
		Lo    int
		Hi    int
		Delta int
	}
)

const (
	// MaxPositions caps the number of items in one sequence
	MaxPositions = 20

	// ZeroReject refuses position 0 as an invalid argument
	ZeroReject ZeroPolicy = "reject"

	// ZeroAsFirst treats position 0 as a move to the front
	ZeroAsFirst ZeroPolicy = "first"
)

var (
	ErrInvalidArgument = errors.New("invalid position")
	ErrOutOfRange      = errors.New("position out of range")
	ErrNotFound        = errors.New("item not found")
	ErrLimitReached    = errors.New("sequence is full")
	ErrInvalidPolicy   = errors.New("invalid zero position policy")
)

// ParseZeroPolicy validates a policy name
func ParseZeroPolicy(s string) (ZeroPolicy, error) {
	p := ZeroPolicy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ZeroReject, ZeroAsFirst:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// ParsePosition converts a requested position into an integer. Numbers,
// numeric strings and json.Number are accepted; fractional values are not
func ParsePosition(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return clampPosition(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, fmt.Errorf("%w: %v is not an integer",
				ErrInvalidArgument, t)
		}
		return int(max(min(t, math.MaxInt32), math.MinInt32)), nil
	case json.Number:
		return parsePositionString(string(t))
	case string:
		return parsePositionString(t)
	default:
		return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidArgument, v)
	}
}

// Resolve validates a requested position against the live sibling count.
// Checks run in a fixed order: integer, upper bound, lower bound, zero
func (p ZeroPolicy) Resolve(target any, count int) (int, error) {
	pos, err := ParsePosition(target)
	if err != nil {
		return 0, err
	}
	if pos > count {
		return 0, fmt.Errorf(
			"%w: new order can't exceed sibling count (%d > %d)",
			ErrOutOfRange, pos, count,
		)
	}
	if pos < 0 {
		return 0, fmt.Errorf("%w: new order must be a positive integer",
			ErrInvalidArgument)
	}
	if pos == 0 {
		if p != ZeroAsFirst {
			return 0, fmt.Errorf("%w: positions start at 1",
				ErrInvalidArgument)
		}
		return 1, nil
	}
	return pos, nil
}

// Next returns the position for an item appended to a sequence of count
func Next(count int) (int, error) {
	if count >= MaxPositions {
		return 0, fmt.Errorf("%w: at most %d items", ErrLimitReached,
			MaxPositions)
	}
	return count + 1, nil
}

// Plan returns the sibling shift for moving an item from old to target.
// The second result is false when the move is a no-op
func Plan(old, target int) (Range, bool) {
	switch {
	case target > old:
		return Range{Lo: old + 1, Hi: target, Delta: -1}, true
	case target < old:
		return Range{Lo: target, Hi: old - 1, Delta: 1}, true
	default:
		return Range{}, false
	}
}

// Closing returns the shift that closes the gap left by removing the item
// at pos from a sequence of count
func Closing(pos, count int) (Range, bool) {
	if pos >= count {
		return Range{}, false
	}
	return Range{Lo: pos + 1, Hi: count, Delta: -1}, true
}

func parsePositionString(s string) (int, error) {
	pos, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, s)
	}
	// out of range integers saturate and then fail the bound checks
	return clampPosition(pos), nil
}

// clampPosition limits v to the int32 range, far outside any valid position
func clampPosition(v int64) int {
	return int(max(min(v, math.MaxInt32), math.MinInt32))
}
