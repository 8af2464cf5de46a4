package carousel

import (
	"math"
	"time"
)

// Point is a touch position at an instant.
type Point struct {
	X, Y float64
	At   time.Time
}

type Direction int

const (
	SwipeNone Direction = iota
	SwipeNext
	SwipePrev
)

func (d Direction) String() string {
	switch d {
	case SwipeNext:
		return "next"
	case SwipePrev:
		return "prev"
	default:
		return "none"
	}
}

// SwipeConfig bounds what counts as an intentional horizontal swipe.
type SwipeConfig struct {
	Threshold   float64
	Dominance   float64
	MaxDuration time.Duration
}

var DefaultSwipe = SwipeConfig{
	Threshold:   50,
	Dominance:   1.5,
	MaxDuration: 600 * time.Millisecond,
}

// ResolveSwipe applies DefaultSwipe.
func ResolveSwipe(start, end Point) Direction {
	return DefaultSwipe.Resolve(start, end)
}

// Resolve maps a leftward swipe to SwipeNext and a rightward one to
// SwipePrev. Short, slow or diagonal gestures resolve to SwipeNone.
func (cfg SwipeConfig) Resolve(start, end Point) Direction {
	dx := end.X - start.X
	dy := end.Y - start.Y

	if math.Abs(dx) < cfg.Threshold {
		return SwipeNone
	}
	if math.Abs(dx) < cfg.Dominance*math.Abs(dy) {
		return SwipeNone
	}
	if !start.At.IsZero() && !end.At.IsZero() {
		elapsed := end.At.Sub(start.At)
		if elapsed < 0 || elapsed > cfg.MaxDuration {
			return SwipeNone
		}
	}

	if dx < 0 {
		return SwipeNext
	}
	return SwipePrev
}
