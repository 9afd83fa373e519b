package bridge

import (
	"time"

	"github.com/strmfi/vestd/internal/core/vesting"
)

// SystemClock reads the wall clock, the Clock used by the running
// service outside of tests.
type SystemClock struct{}

// Now returns the current Unix second.
func (SystemClock) Now() int64 { return time.Now().Unix() }

// FixedClock always reports the same instant. Tests use it to drive
// the engine through a schedule deterministically without sleeping.
type FixedClock struct {
	At int64
}

// Now returns the fixed instant.
func (c FixedClock) Now() int64 { return c.At }

var (
	_ vesting.Clock = SystemClock{}
	_ vesting.Clock = FixedClock{}
)
