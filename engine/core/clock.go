package core

import "time"

// Clock measures elapsed seconds since Start. The time source is swappable so
// frame loops can be driven deterministically in tests.
type Clock struct {
	now       func() time.Time
	startTime time.Time
	elapsed   float64
	running   bool
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

func NewClockWithSource(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.running {
		c.elapsed = c.now().Sub(c.startTime).Seconds()
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = c.now()
	c.elapsed = 0
	c.running = true
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.running = false
}

// Elapsed returns seconds since Start, as of the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
