package baseline

import "github.com/abcouwer-jpl/jsc/jpegerr"

// Options configures an Encoder, the Go-native analogue of the teacher's
// JPEGBaselineParameters: a single struct instead of a generic
// GetParameter/SetParameter map, since this core has a fixed, known set of
// knobs.
type Options struct {
	// Quality is the JPEG quality factor, 1..100.
	Quality int

	// RestartRows is the number of iMCU rows per restart interval; 0 means
	// no restart markers. Compress fills this in from a section count.
	RestartRows int

	// TraceLevel and Trace implement spec §9's "per-library trace level
	// threaded through the codec instance, not a process global": 0 is
	// silent, higher values emit progressively more detail to Trace.
	TraceLevel int
	Trace      func(level int, msg string)
}

// Validate resets Quality to a safe default and clears a nil Trace sink, the
// same "reset to default rather than reject" leniency the teacher's
// Validate uses for quality.
func (o *Options) Validate() error {
	if o.Quality < 1 || o.Quality > 100 {
		o.Quality = 85
	}
	if o.RestartRows < 0 {
		return jpegerr.ErrInvalidDimensions
	}
	if o.Trace == nil {
		o.Trace = func(int, string) {}
	}
	return nil
}

// WithQuality sets Quality and returns o for chaining, mirroring the
// teacher's WithQuality.
func (o *Options) WithQuality(quality int) *Options {
	o.Quality = quality
	return o
}

func (o *Options) trace(level int, msg string) {
	if o.TraceLevel >= level && o.Trace != nil {
		o.Trace(level, msg)
	}
}
