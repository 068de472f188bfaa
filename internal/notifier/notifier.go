package notifier

import (
	"errors"
)

// Notifier delivers a user-visible message.
type Notifier interface {
	Notify(content string) error
}

// Func adapts a plain function to Notifier.
type Func func(content string) error

func (f Func) Notify(content string) error {
	return f(content)
}

// Multi fans a message out to every notifier. All notifiers are tried; their
// errors are joined.
type Multi []Notifier

func (m Multi) Notify(content string) error {
	var errs []error

	for _, n := range m {
		if n == nil {
			continue
		}

		if err := n.Notify(content); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
