package clockx

import "errors"

// ErrExhausted is returned by Sweep when two full revolutions claimed nothing.
var ErrExhausted = errors.New("clockx: no slot claimed after two sweeps")

// Verdict tells the clock what to do with the slot under the hand.
type Verdict int

const (
	// Skip moves the hand on to the next slot.
	Skip Verdict = iota
	// Claim stops the sweep and leaves the hand on the claimed slot.
	Claim
)

// Visitor inspects one slot. A non-nil error aborts the sweep immediately.
type Visitor func(slot int) (Verdict, error)

// Clock is the circular hand of a CLOCK (second-chance) replacer over a fixed
// number of slots. It keeps no per-slot state: the owner decides, through a
// Visitor, what a slot's reference and pin state mean.
type Clock struct {
	hand int
	n    int
}

// New returns a clock over [0..capacity). The hand starts on the last slot so
// that the first sweep begins at slot 0.
func New(capacity int) *Clock {
	if capacity <= 0 {
		capacity = 1
	}
	return &Clock{hand: capacity - 1, n: capacity}
}

func (c *Clock) Capacity() int { return c.n }

// Hand returns the current hand position.
func (c *Clock) Hand() int { return c.hand }

// Advance moves the hand one slot forward and returns the new position.
func (c *Clock) Advance() int {
	c.hand = (c.hand + 1) % c.n
	return c.hand
}

// Sweep advances the hand once and then visits slots in circular order until
// the visitor claims one. The walk is bounded by 2*capacity visits (two full
// sweeps), so termination does not depend on where the hand started.
func (c *Clock) Sweep(visit Visitor) (int, error) {
	c.Advance()
	for range 2 * c.n {
		v, err := visit(c.hand)
		if err != nil {
			return -1, err
		}
		if v == Claim {
			return c.hand, nil
		}
		c.Advance()
	}
	return -1, ErrExhausted
}
