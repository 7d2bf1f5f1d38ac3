package aggregate

// Granularity selects the unit of TimeRemaining.
type Granularity int

const (
	// Days is whole days before the deadline, rounded up.
	Days Granularity = iota
	// Hours is fractional hours before the deadline.
	Hours
)

func (g Granularity) String() string {
	if g == Hours {
		return "hours"
	}
	return "days"
}

// Option applies a configuration option to Build.
type Option func(*options)

type options struct {
	granularity Granularity
}

// WithGranularity sets the unit of TimeRemaining. Defaults to Days.
func WithGranularity(g Granularity) Option {
	return func(o *options) {
		o.granularity = g
	}
}
