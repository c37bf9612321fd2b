// Package validate vetoes store writes whose pending state fails a validator.
//
// Validators run in order from the StateWillChange hook, so a rejected write
// never reaches the store. The first failing validator stops the check.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"

	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/hookable"
)

// ErrValidationFailed matches every *ValidationError with errors.Is.
var ErrValidationFailed = errors.New("validate: validation failed")

// Validator checks a pending state. A false result with a nil error is a
// plain rejection; an error means the validator itself could not decide.
type Validator[S any] interface {
	Name() string
	Validate(state S) (bool, error)
}

// ValidationError reports the rejected state and the validator that failed.
type ValidationError struct {
	Validator string
	State     any
	Err       error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	state, err := json.MarshalIndent(e.State, "", " ")
	if err != nil {
		state = []byte(fmt.Sprintf("%+v", e.State))
	}
	msg := fmt.Sprintf("validate: validation failed for state:\n\n%s\n\nfailed validator: %s", state, e.Validator)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// New returns the validation middleware. Nil validators are skipped.
func New[S any](validators ...Validator[S]) store.Middleware[S] {
	checks := make([]Validator[S], 0, len(validators))
	for _, v := range validators {
		if v != nil {
			checks = append(checks, v)
		}
	}

	return func(_ *store.Store[S], hooks store.Hooks[S]) error {
		hooks.StateWillChange(hookable.EveryTap(func(state S) error {
			return Run(state, checks...)
		}))
		return nil
	}
}

// Run checks state against validators in order and returns the first failure.
func Run[S any](state S, validators ...Validator[S]) error {
	for _, v := range validators {
		if v == nil {
			continue
		}
		ok, err := v.Validate(state)
		if err != nil || !ok {
			return &ValidationError{Validator: v.Name(), State: state, Err: err}
		}
	}
	return nil
}
