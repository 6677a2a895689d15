package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Clock is the time source used by code that has to be driven by a fake in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// System is the wall clock.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Manual is a Clock that only moves when told to. Sleep advances it.
type Manual struct {
	T      time.Time
	Slept  time.Duration
	Sleeps int
}

func NewManual() *Manual { return &Manual{T: time.Unix(1_700_000_000, 0)} }

func (m *Manual) Now() time.Time { return m.T }

func (m *Manual) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	m.T = m.T.Add(d)
	m.Slept += d
	m.Sleeps++
}

// Advance moves the clock forward without counting as a sleep.
func (m *Manual) Advance(d time.Duration) { m.T = m.T.Add(d) }
