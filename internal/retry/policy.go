package retry

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how the delay between attempts grows.
type Mode string

const (
	ModeFixed       Mode = "fixed"
	ModeLinear      Mode = "linear"
	ModeExponential Mode = "exponential"
)

// Policy bounds a retry loop: how long to wait before each retry and how many
// attempts are allowed in total. It is immutable after construction.
type Policy struct {
	Mode        Mode
	Initial     time.Duration
	Max         time.Duration
	MaxAttempts int
}

// DefaultPolicy polls every 500ms for at most 40 attempts.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeFixed, Initial: 500 * time.Millisecond, Max: 5 * time.Second, MaxAttempts: 40}
}

// NewPolicy builds a policy from raw config values; zero or unknown values fall back to defaults.
func NewPolicy(mode string, initial, maxDelay time.Duration, maxAttempts int) Policy {
	p := DefaultPolicy()

	switch m := Mode(strings.ToLower(mode)); m {
	case ModeFixed, ModeLinear, ModeExponential:
		p.Mode = m
	}

	if initial > 0 {
		p.Initial = initial
	}

	if maxDelay > 0 {
		p.Max = maxDelay
	}

	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}

	if p.Initial > p.Max {
		p.Initial = p.Max
	}

	return p
}

// Delay returns the wait before retry number n (1-based).
func (p Policy) Delay(n int) time.Duration {
	if n <= 0 {
		return 0
	}

	var d time.Duration

	switch p.Mode {
	case ModeLinear:
		d = time.Duration(n) * p.Initial
	case ModeExponential:
		if n > 30 {
			return p.Max
		}

		d = p.Initial * (1 << (n - 1))
	default:
		return p.Initial
	}

	if d > p.Max {
		return p.Max
	}

	return d
}

// Exhausted reports whether attempts have used up the budget.
func (p Policy) Exhausted(attempts int) bool {
	return attempts >= p.MaxAttempts
}

// Validate ensures the policy can be applied.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("initial delay must be >0")
	}

	if p.Max <= 0 {
		return fmt.Errorf("max delay must be >0")
	}

	if p.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be >0")
	}

	return nil
}
