// Package formstate models the states of the email form and the transitions its UI must
// exhibit. The model is pure: it never touches a browser. Tests drive the model and the page
// in lockstep and compare what the page shows with State.Check.
package formstate

import (
	"fmt"
	"strings"
)

// Literals the form shows. They are matched as substrings, byte for byte.
const (
	SuccessLiteral        = "Хорошо, мы пришлём имя"
	EnterEmailLiteral     = "Введите email"
	IncorrectEmailLiteral = "Некорректный email"
)

type Gender int

const (
	Boy Gender = iota
	Girl
)

func (g Gender) String() string {
	switch g {
	case Boy:
		return "boy"
	case Girl:
		return "girl"
	default:
		return fmt.Sprintf("Gender(%d)", int(g))
	}
}

type Kind int

const (
	Empty Kind = iota
	Editing
	SubmittedOk
	SubmittedError
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "Empty"
	case Editing:
		return "Editing"
	case SubmittedOk:
		return "SubmittedOk"
	case SubmittedError:
		return "SubmittedError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Terminal reports whether a scenario ends in this kind of state.
func (k Kind) Terminal() bool {
	return k == SubmittedOk || k == SubmittedError
}

// ErrorFamily is the kind of validation message the form shows for a rejected address.
type ErrorFamily int

const (
	NoError ErrorFamily = iota
	EnterEmail
	IncorrectEmail
)

// Literal returns the text that a message of this family must contain.
func (f ErrorFamily) Literal() string {
	switch f {
	case EnterEmail:
		return EnterEmailLiteral
	case IncorrectEmail:
		return IncorrectEmailLiteral
	default:
		return ""
	}
}

func (f ErrorFamily) String() string {
	switch f {
	case NoError:
		return "none"
	case EnterEmail:
		return "enter-email"
	case IncorrectEmail:
		return "incorrect-email"
	default:
		return fmt.Sprintf("ErrorFamily(%d)", int(f))
	}
}

// FamilyFor returns the message family the form uses when it rejects value.
func FamilyFor(value string) ErrorFamily {
	if value == "" {
		return EnterEmail
	}
	return IncorrectEmail
}

// State is a state of the form. Email is what the input holds in Editing and what is echoed
// back in SubmittedOk; Family is only set in SubmittedError.
type State struct {
	Kind   Kind
	Email  string
	Gender Gender
	Family ErrorFamily
}

func (s State) String() string {
	switch s.Kind {
	case Empty:
		return "Empty"
	case Editing:
		return fmt.Sprintf("Editing(%q, %s)", s.Email, s.Gender)
	case SubmittedOk:
		return fmt.Sprintf("SubmittedOk(%q)", s.Email)
	case SubmittedError:
		return fmt.Sprintf("SubmittedError(%s)", s.Family)
	default:
		return s.Kind.String()
	}
}

// Observation is a snapshot of what the page displays.
type Observation struct {
	InputDisplayed  bool
	InputValue      string
	ResultDisplayed bool
	ErrorDisplayed  bool
	ErrorText       string
	ResetDisplayed  bool
}

func (o Observation) String() string {
	var shown []string
	if o.InputDisplayed {
		shown = append(shown, fmt.Sprintf("input(%q)", o.InputValue))
	}
	if o.ResultDisplayed {
		shown = append(shown, "result")
	}
	if o.ErrorDisplayed {
		shown = append(shown, fmt.Sprintf("error(%q)", o.ErrorText))
	}
	if o.ResetDisplayed {
		shown = append(shown, "another-email")
	}
	if len(shown) == 0 {
		return "nothing displayed"
	}
	return strings.Join(shown, ", ")
}

// InvariantError means that the page did not display what the model state requires.
type InvariantError struct {
	State    State
	Observed Observation
	Problems []string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("page does not match state %s: %s (page shows %s)",
		e.State, strings.Join(e.Problems, "; "), e.Observed)
}

// Check verifies the display contract of the state: the email input is editable in Empty,
// Editing and SubmittedError; the result and "another email" views are displayed only in
// SubmittedOk; the error view only in SubmittedError. In Empty the input must be blank.
func (s State) Check(o Observation) error {
	var problems []string
	expect := func(what string, want, got bool) {
		if want != got {
			if want {
				problems = append(problems, what+" should be displayed")
			} else {
				problems = append(problems, what+" should not be displayed")
			}
		}
	}
	expect("email input", s.Kind != SubmittedOk, o.InputDisplayed)
	expect("result view", s.Kind == SubmittedOk, o.ResultDisplayed)
	expect("another-email link", s.Kind == SubmittedOk, o.ResetDisplayed)
	expect("error view", s.Kind == SubmittedError, o.ErrorDisplayed)
	if s.Kind == Empty && o.InputDisplayed && o.InputValue != "" {
		problems = append(problems, fmt.Sprintf("email input should be empty but contains %q", o.InputValue))
	}
	if len(problems) > 0 {
		return &InvariantError{State: s, Observed: o, Problems: problems}
	}
	return nil
}
