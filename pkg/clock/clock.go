package clock

import "time"

// Clock supplies the current instant for every "now" comparison in the
// scheduling engine, so time can be substituted in tests.
type Clock interface {
	Now() time.Time
}

type fixedOffsetClock struct {
	location *time.Location
}

// New returns a Clock pinned to the given zone offset. Instants are truncated
// to millisecond precision; the store does not keep nanoseconds and mixed
// precision breaks round-trip comparisons.
func New(location *time.Location) Clock {
	if location == nil {
		location = time.UTC
	}
	return &fixedOffsetClock{location: location}
}

func (c *fixedOffsetClock) Now() time.Time {
	return time.Now().In(c.location).Truncate(time.Millisecond)
}

// Fixed returns a Clock frozen at the given instant, truncated the same way
// as the production clock.
func Fixed(instant time.Time) Clock {
	return fixedClock{instant: instant.Truncate(time.Millisecond)}
}

type fixedClock struct {
	instant time.Time
}

func (c fixedClock) Now() time.Time {
	return c.instant
}
