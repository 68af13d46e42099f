// Package scroll turns raw axis samples into logical scroll ticks.
//
// Wheels report discrete steps together with a small continuous value;
// touchpads report only continuous values. Both kinds are collected
// until the frame that closes the event group, then reconciled by Commit.
package scroll

import "github.com/dshills/lavapanel/internal/bind"

// Fixed is a signed 24.8 fixed-point number as used on the wire.
type Fixed int32

// FixedFromFloat converts f to fixed point, truncating toward zero.
func FixedFromFloat(f float64) Fixed {
	return Fixed(f * 256)
}

// FixedFromInt converts an integer to fixed point.
func FixedFromInt(i int32) Fixed {
	return Fixed(i * 256)
}

// Float returns f as a float.
func (f Fixed) Float() float64 {
	return float64(f) / 256
}

// Int returns the integer part of f.
func (f Fixed) Int() int32 {
	return int32(f) / 256
}

const (
	// Threshold is the continuous distance, in raw fixed-point units,
	// that makes up one virtual tick.
	Threshold int64 = 10000

	// Timeout is the gap in milliseconds after which a pending continuous
	// value is discarded.
	Timeout uint32 = 1000
)

// Accumulator holds the scroll samples of one seat.
// The zero value is ready to use.
type Accumulator struct {
	value    int64
	steps    uint32
	stepSum  int64
	lastTime uint32
}

// Axis adds a continuous sample taken at timeMs. A stale value is dropped
// first unless discrete steps are pending.
func (a *Accumulator) Axis(timeMs uint32, v Fixed) {
	if a.steps == 0 && timeMs-a.lastTime > Timeout {
		a.value = 0
	}
	a.value += int64(v)
	a.lastTime = timeMs
}

// Discrete adds the magnitude of a discrete step sample.
func (a *Accumulator) Discrete(steps int32) {
	a.stepSum += int64(steps)
	if steps < 0 {
		a.steps += uint32(-int64(steps))
		return
	}
	a.steps += uint32(steps)
}

// Commit closes the current batch and returns the scroll direction and
// the number of ticks to emit.
//
// A positive continuous value scrolls down. Without a continuous value
// the sign of the discrete steps decides; otherwise the direction is up.
// Discrete steps win: each step is one tick and the batch is cleared.
// Otherwise one tick is taken from the continuous value per whole
// Threshold it exceeds, and the remainder is kept.
func (a *Accumulator) Commit() (direction uint32, ticks int) {
	direction, change := bind.ScrollUp, Threshold
	if a.value > 0 || (a.value == 0 && a.stepSum > 0) {
		direction, change = bind.ScrollDown, -Threshold
	}

	if a.steps > 0 {
		ticks = int(a.steps)
		a.steps = 0
		a.stepSum = 0
		a.value = 0
		return direction, ticks
	}

	for abs(a.value) > Threshold {
		ticks++
		a.value += change
	}
	return direction, ticks
}

// Pending returns the uncommitted step count and continuous value.
func (a *Accumulator) Pending() (steps uint32, value int64) {
	return a.steps, a.value
}

// Reset drops all pending samples.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
