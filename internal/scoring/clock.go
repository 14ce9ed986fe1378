package scoring

import "github.com/jonboulle/clockwork"

// clock supplies the evaluation time when an Input leaves it unset.
var clock = clockwork.NewRealClock()

// SetClock swaps the default evaluation time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
