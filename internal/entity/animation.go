package entity

const animationPeriod = 40

// Animation is a walk-cycle counter. Each entity owns its own.
type Animation struct {
	counter int
}

// NewAnimation returns an animation at the start of its cycle.
func NewAnimation() Animation {
	return Animation{counter: 1}
}

// Advance moves the cycle on by one tick.
func (a *Animation) Advance() {
	a.counter = (a.counter + 1) % animationPeriod
}

// Frame returns 0 once the counter is past the midpoint of the cycle, 1 before it.
func (a Animation) Frame() int {
	if a.counter > animationPeriod/2 {
		return 0
	}
	return 1
}
