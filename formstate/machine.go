package formstate

import (
	"fmt"

	"github.com/launchdarkly/form-contract-tests/corpus"
)

// Classifier decides whether the form should accept an address. *corpus.Corpus implements it.
type Classifier interface {
	Classify(value string) (corpus.Outcome, bool)
}

// TransitionError means a verb was applied in a state that has no such transition.
type TransitionError struct {
	From State
	Verb string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no %s transition from state %s", e.Verb, e.From)
}

// UnclassifiedError means an address was submitted that the classifier has no label for, so
// the expected outcome is unknown.
type UnclassifiedError struct {
	Value string
}

func (e *UnclassifiedError) Error() string {
	return fmt.Sprintf("no expected outcome for submitted value %q", e.Value)
}

// Machine computes the expected state after each user action. It holds no mutable state
// and is safe for concurrent use.
type Machine struct {
	classifier Classifier
}

func NewMachine(classifier Classifier) *Machine {
	return &Machine{classifier: classifier}
}

// Initial returns the state of a freshly loaded page.
func (m *Machine) Initial() State {
	return State{Kind: Empty, Gender: Boy}
}

// EnterEmail types text into the input. Keystrokes are appended to what is already there.
func (m *Machine) EnterEmail(s State, text string) (State, error) {
	switch s.Kind {
	case Empty, Editing:
		return State{Kind: Editing, Email: s.Email + text, Gender: s.Gender}, nil
	default:
		return s, &TransitionError{From: s, Verb: "enterEmail"}
	}
}

// SelectGender picks a gender. Repeated selections overwrite each other.
func (m *Machine) SelectGender(s State, g Gender) (State, error) {
	switch s.Kind {
	case Empty, Editing:
		return State{Kind: Editing, Email: s.Email, Gender: g}, nil
	default:
		return s, &TransitionError{From: s, Verb: "selectGender"}
	}
}

// Submit sends the form. The outcome depends only on the email, never on the gender.
func (m *Machine) Submit(s State) (State, error) {
	if s.Kind != Empty && s.Kind != Editing {
		return s, &TransitionError{From: s, Verb: "submit"}
	}
	outcome, ok := m.classifier.Classify(s.Email)
	if !ok {
		return s, &UnclassifiedError{Value: s.Email}
	}
	if outcome == corpus.Accepted {
		return State{Kind: SubmittedOk, Email: s.Email, Gender: s.Gender}, nil
	}
	return State{Kind: SubmittedError, Email: s.Email, Gender: s.Gender, Family: FamilyFor(s.Email)}, nil
}

// ClickAnotherEmail returns from a successful submission to a blank form. The form has no
// way back from SubmittedError other than reloading the page.
func (m *Machine) ClickAnotherEmail(s State) (State, error) {
	if s.Kind != SubmittedOk {
		return s, &TransitionError{From: s, Verb: "clickAnotherEmail"}
	}
	return m.Initial(), nil
}
