// Package fakeform simulates the email form behind the browser.Session interface, so that
// the page object and the scenarios can be tested without a browser. The simulation follows
// the markup contract of the real page: every element is always in the document, and views
// are shown or hidden as the form changes state.
package fakeform

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/launchdarkly/form-contract-tests/browser"
	"github.com/launchdarkly/form-contract-tests/formpage"
	"github.com/launchdarkly/form-contract-tests/formstate"
)

// ErrClosed is returned by every operation on a closed session.
var ErrClosed = errors.New("browser session is closed")

// Behavior describes how the simulated form reacts. The zero value, given an Accept
// function, is a correctly working form.
type Behavior struct {
	// Accept is the form's email validator.
	Accept func(email string, gender formstate.Gender) bool
	// Selectors default to formpage.DefaultSelectors.
	Selectors formpage.Selectors
	// Missing lists elements that are not in the markup at all.
	Missing []browser.Selector
	// ReactAfter is how many element lookups pass after a submission before the page shows
	// the outcome.
	ReactAfter int
	// EchoTransform changes the echoed address; nil echoes it unchanged.
	EchoTransform func(string) string
	// ResultMessage is the confirmation text; it defaults to one containing the success literal.
	ResultMessage string
	// MessageFor overrides the validation message for a rejected address.
	MessageFor func(email string) string
	// KeepInputAfterReset makes "another email" leave the old address in the input.
	KeepInputAfterReset bool
	// KeepResetLinkAfterReset makes "another email" stay displayed after it is clicked.
	KeepResetLinkAfterReset bool
	// FindError, if set, makes every lookup fail with this error.
	FindError error
}

type phase int

const (
	phaseInput phase = iota
	phasePending
	phaseSuccess
	phaseError
)

// Form is one simulated browser session showing the form.
type Form struct {
	behavior  Behavior
	sels      formpage.Selectors
	lock      sync.Mutex
	url       string
	loaded    bool
	value     string
	gender    formstate.Gender
	phase     phase
	pendingOk bool
	countdown int
	submitted string
	closed    bool
	closes    int
	history   []string
}

var _ browser.Session = (*Form)(nil)

func New(b Behavior) *Form {
	return &Form{behavior: b, sels: b.Selectors.WithDefaults()}
}

func (f *Form) Navigate(ctx context.Context, url string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.url = url
	f.loaded = true
	f.value = ""
	f.gender = formstate.Boy
	f.phase = phaseInput
	f.record("navigate " + url)
	return nil
}

func (f *Form) FindElement(ctx context.Context, sel browser.Selector) (browser.Element, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.behavior.FindError != nil {
		return nil, f.behavior.FindError
	}
	if f.phase == phasePending {
		if f.countdown > 0 {
			f.countdown--
		} else if f.pendingOk {
			f.phase = phaseSuccess
		} else {
			f.phase = phaseError
		}
	}
	if !f.loaded || !f.known(sel) {
		return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, sel)
	}
	for _, m := range f.behavior.Missing {
		if m == sel {
			return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, sel)
		}
	}
	return &element{form: f, sel: sel}, nil
}

func (f *Form) known(sel browser.Selector) bool {
	s := f.sels
	switch sel {
	case s.EmailInput, s.BoyGender, s.GirlGender, s.Submit, s.YourEmail, s.ResultText, s.AnotherEmail, s.FormError:
		return true
	}
	return false
}

// Close marks the session closed. Closing twice is allowed and counted.
func (f *Form) Close() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.closed = true
	f.closes++
	f.record("close")
	return nil
}

// Closed reports whether Close was called.
func (f *Form) Closed() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.closed
}

// Submitted returns the last address the form received.
func (f *Form) Submitted() string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.submitted
}

// Gender returns the currently selected gender.
func (f *Form) Gender() formstate.Gender {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.gender
}

// History lists the user-visible actions performed on the form, in order.
func (f *Form) History() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.history...)
}

func (f *Form) record(event string) {
	f.history = append(f.history, event)
}

func (f *Form) displayed(sel browser.Selector) bool {
	s := f.sels
	switch sel {
	case s.EmailInput, s.BoyGender, s.GirlGender, s.Submit:
		return f.phase == phaseInput || f.phase == phaseError || f.phase == phasePending
	case s.YourEmail, s.ResultText:
		return f.phase == phaseSuccess
	case s.AnotherEmail:
		return f.phase == phaseSuccess || (f.behavior.KeepResetLinkAfterReset && f.submitted != "" && f.phase == phaseInput)
	case s.FormError:
		return f.phase == phaseError
	}
	return false
}

func (f *Form) text(sel browser.Selector) string {
	if !f.displayed(sel) {
		return ""
	}
	s := f.sels
	switch sel {
	case s.YourEmail:
		if f.behavior.EchoTransform != nil {
			return f.behavior.EchoTransform(f.submitted)
		}
		return f.submitted
	case s.ResultText:
		if f.behavior.ResultMessage != "" {
			return f.behavior.ResultMessage
		}
		return formstate.SuccessLiteral + " вашего попугая на " + f.submitted
	case s.FormError:
		if f.behavior.MessageFor != nil {
			return f.behavior.MessageFor(f.submitted)
		}
		return formstate.FamilyFor(f.submitted).Literal()
	case s.Submit:
		return "Получить имя"
	}
	return ""
}

func (f *Form) click(sel browser.Selector) error {
	if !f.displayed(sel) {
		return fmt.Errorf("element %s is not interactable", sel)
	}
	s := f.sels
	switch sel {
	case s.BoyGender:
		f.gender = formstate.Boy
		f.record("select boy")
	case s.GirlGender:
		f.gender = formstate.Girl
		f.record("select girl")
	case s.Submit:
		f.submitted = f.value
		f.pendingOk = f.behavior.Accept != nil && f.behavior.Accept(f.value, f.gender)
		f.countdown = f.behavior.ReactAfter
		f.phase = phasePending
		f.record(fmt.Sprintf("submit %q", f.value))
	case s.AnotherEmail:
		if !f.behavior.KeepInputAfterReset {
			f.value = ""
		}
		f.phase = phaseInput
		f.record("another email")
	}
	return nil
}

type element struct {
	form *Form
	sel  browser.Selector
}

func (e *element) do(ctx context.Context, fn func(f *Form) error) error {
	e.form.lock.Lock()
	defer e.form.lock.Unlock()
	if e.form.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(e.form)
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	return e.do(ctx, func(f *Form) error {
		if e.sel != f.sels.EmailInput || !f.displayed(e.sel) {
			return fmt.Errorf("element %s does not accept keys", e.sel)
		}
		f.value += text
		f.record(fmt.Sprintf("type %q", text))
		return nil
	})
}

func (e *element) Click(ctx context.Context) error {
	return e.do(ctx, func(f *Form) error { return f.click(e.sel) })
}

func (e *element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.do(ctx, func(f *Form) error {
		text = f.text(e.sel)
		return nil
	})
	return text, err
}

func (e *element) Value(ctx context.Context) (string, error) {
	var value string
	err := e.do(ctx, func(f *Form) error {
		if e.sel == f.sels.EmailInput {
			value = f.value
		}
		return nil
	})
	return value, err
}

func (e *element) IsDisplayed(ctx context.Context) (bool, error) {
	var shown bool
	err := e.do(ctx, func(f *Form) error {
		shown = f.displayed(e.sel)
		return nil
	})
	return shown, err
}
