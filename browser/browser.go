// Package browser defines the capability the form tests need from a remote browser, and an
// implementation of it that drives Chrome over the DevTools protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/launchdarkly/form-contract-tests/framework"
)

// ErrNotFound is returned by Session.FindElement when nothing matches the selector.
var ErrNotFound = errors.New("no element matches selector")

// By is the strategy used to locate an element.
type By string

const (
	ByName  By = "name"
	ByID    By = "id"
	ByClass By = "class"
	ByCSS   By = "css"
)

// Selector is a stable way of locating one element on the page.
type Selector struct {
	By    By     `json:"by"`
	Value string `json:"value"`
}

func Name(value string) Selector  { return Selector{By: ByName, Value: value} }
func ID(value string) Selector    { return Selector{By: ByID, Value: value} }
func Class(value string) Selector { return Selector{By: ByClass, Value: value} }
func CSS(value string) Selector   { return Selector{By: ByCSS, Value: value} }

// CSS returns the equivalent CSS selector.
func (s Selector) CSS() string {
	switch s.By {
	case ByName:
		return `[name="` + cssEscape(s.Value) + `"]`
	case ByID:
		return `[id="` + cssEscape(s.Value) + `"]`
	case ByClass:
		return "." + s.Value
	default:
		return s.Value
	}
}

// Validate reports whether the selector can be used.
func (s Selector) Validate() error {
	switch s.By {
	case ByName, ByID, ByClass, ByCSS:
	default:
		return fmt.Errorf("unknown selector strategy %q", s.By)
	}
	if s.Value == "" {
		return fmt.Errorf("selector %s has no value", s.By)
	}
	if s.By == ByClass && strings.ContainsAny(s.Value, " .#[]") {
		return fmt.Errorf("class selector %q must be a single class name", s.Value)
	}
	return nil
}

func (s Selector) String() string {
	return fmt.Sprintf("%s=%q", s.By, s.Value)
}

func cssEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// Session is an exclusively owned connection to one browser page. Implementations are not
// required to be safe for concurrent use.
//
// FindElement does not wait: it reports what the page contains at the time of the call.
// Waiting for the page to reach a state is the caller's job.
type Session interface {
	Navigate(ctx context.Context, url string) error
	FindElement(ctx context.Context, sel Selector) (Element, error)
	Close() error
}

// Element is a handle to an element that was found on the page.
type Element interface {
	SendKeys(ctx context.Context, text string) error
	Click(ctx context.Context) error
	// Text returns the rendered text of the element.
	Text(ctx context.Context) (string, error)
	// Value returns the current value of a form control.
	Value(ctx context.Context) (string, error)
	IsDisplayed(ctx context.Context) (bool, error)
}

// Opener creates a new Session. Each call must return an independent session, which the
// caller must close. The logger receives diagnostic output for the lifetime of the session.
type Opener func(ctx context.Context, logger framework.Logger) (Session, error)
