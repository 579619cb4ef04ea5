package formpage

import (
	"fmt"
	"time"

	"github.com/launchdarkly/form-contract-tests/browser"
	"github.com/launchdarkly/form-contract-tests/formstate"
)

// ElementNotFoundError means an element the page needed never appeared within the wait.
type ElementNotFoundError struct {
	Selector browser.Selector
	State    formstate.Kind
	Waited   time.Duration
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element %s not found after %s (form was expected to be in state %s)",
		e.Selector, e.Waited, e.State)
}

func (e *ElementNotFoundError) Unwrap() error { return browser.ErrNotFound }

// TimeoutError means an element was found but never reached the expected condition.
type TimeoutError struct {
	Selector  browser.Selector
	Condition string
	State     formstate.Kind
	Waited    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s: element %s (form was expected to be in state %s)",
		e.Waited, e.Condition, e.Selector, e.State)
}
