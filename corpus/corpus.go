// Package corpus holds the labeled email addresses that the form's validator is checked
// against. The corpus does not validate anything itself: whether an address is accepted is
// decided by its label.
package corpus

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrCorpusBuild is the error that every corpus construction failure wraps.
var ErrCorpusBuild = errors.New("invalid email corpus")

// Outcome is how the form is expected to react to an address.
type Outcome int

const (
	Accepted Outcome = iota + 1
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Category is the partition of the corpus a case belongs to. Each category implies an
// Outcome.
type Category string

const (
	BaselineValid      Category = "baseline-valid"
	EdgeValid          Category = "edge-valid"
	BaselineInvalid    Category = "baseline-invalid"
	AdversarialInvalid Category = "adversarial-invalid"
)

// Categories lists every category in corpus order.
var Categories = []Category{BaselineValid, EdgeValid, BaselineInvalid, AdversarialInvalid}

// Outcome returns the outcome implied by the category.
func (c Category) Outcome() (Outcome, error) {
	switch c {
	case BaselineValid, EdgeValid:
		return Accepted, nil
	case BaselineInvalid, AdversarialInvalid:
		return Rejected, nil
	default:
		return 0, fmt.Errorf("unknown category %q", string(c))
	}
}

// Case is one labeled address. It is immutable.
type Case struct {
	value     string
	expected  Outcome
	rationale string
	category  Category
}

// NewCase creates a case whose expected outcome follows from its category. An unknown
// category yields a Case with no outcome, which New rejects.
func NewCase(category Category, value, rationale string) Case {
	expected, _ := category.Outcome()
	return Case{value: value, expected: expected, rationale: rationale, category: category}
}

func (c Case) Value() string      { return c.value }
func (c Case) Expected() Outcome  { return c.expected }
func (c Case) Rationale() string  { return c.rationale }
func (c Case) Category() Category { return c.category }

// IsEmpty reports whether the address is the empty string, which the form rejects with a
// different message than other invalid input.
func (c Case) IsEmpty() bool { return c.value == "" }

func (c Case) String() string {
	return fmt.Sprintf("%s (%s, %q)", c.rationale, c.expected, c.value)
}

// DuplicateCaseError means that two cases cannot both be in a corpus, because they have the
// same value (and so an ambiguous classification) or the same rationale (and so the same
// scenario name).
type DuplicateCaseError struct {
	Field  string
	First  Case
	Second Case
}

func (e *DuplicateCaseError) Error() string {
	return fmt.Sprintf("%s: cases %q and %q have the same %s",
		ErrCorpusBuild, e.First.rationale, e.Second.rationale, e.Field)
}

func (e *DuplicateCaseError) Unwrap() error { return ErrCorpusBuild }

// Corpus is an ordered, immutable collection of cases with unique values. It is safe for
// concurrent use.
type Corpus struct {
	cases   []Case
	byValue map[string]int
}

// New builds a corpus. It fails with a *DuplicateCaseError if two cases share a value or a
// rationale, and with ErrCorpusBuild if a case is not well formed.
func New(cases ...Case) (*Corpus, error) {
	c := &Corpus{
		cases:   make([]Case, 0, len(cases)),
		byValue: make(map[string]int, len(cases)),
	}
	byRationale := make(map[string]int, len(cases))
	for _, cs := range cases {
		if cs.expected != Accepted && cs.expected != Rejected {
			return nil, fmt.Errorf("%w: case %q has unknown category %q", ErrCorpusBuild, cs.rationale, cs.category)
		}
		if cs.rationale == "" {
			return nil, fmt.Errorf("%w: case with value %q has no rationale", ErrCorpusBuild, cs.value)
		}
		if i, ok := c.byValue[cs.value]; ok {
			return nil, &DuplicateCaseError{Field: "value", First: c.cases[i], Second: cs}
		}
		if i, ok := byRationale[cs.rationale]; ok {
			return nil, &DuplicateCaseError{Field: "rationale", First: c.cases[i], Second: cs}
		}
		c.byValue[cs.value] = len(c.cases)
		byRationale[cs.rationale] = len(c.cases)
		c.cases = append(c.cases, cs)
	}
	return c, nil
}

// MustNew is like New but panics on error. It is meant for corpora written in code.
func MustNew(cases ...Case) *Corpus {
	c, err := New(cases...)
	if err != nil {
		panic(err)
	}
	return c
}

// Merge returns a corpus containing the cases of c followed by those of other, applying the
// same checks as New.
func (c *Corpus) Merge(other *Corpus) (*Corpus, error) {
	return New(slices.Concat(c.cases, other.cases)...)
}

func (c *Corpus) Len() int { return len(c.cases) }

// All returns every case in order.
func (c *Corpus) All() iter.Seq[Case] {
	return c.filter(func(Case) bool { return true })
}

// Accepted returns the cases the form must accept, in order.
func (c *Corpus) Accepted() iter.Seq[Case] {
	return c.filter(func(cs Case) bool { return cs.expected == Accepted })
}

// Rejected returns the cases the form must reject, in order.
func (c *Corpus) Rejected() iter.Seq[Case] {
	return c.filter(func(cs Case) bool { return cs.expected == Rejected })
}

// InCategory returns the cases of one partition, in order.
func (c *Corpus) InCategory(category Category) iter.Seq[Case] {
	return c.filter(func(cs Case) bool { return cs.category == category })
}

func (c *Corpus) filter(keep func(Case) bool) iter.Seq[Case] {
	return func(yield func(Case) bool) {
		for _, cs := range c.cases {
			if keep(cs) && !yield(cs) {
				return
			}
		}
	}
}

// Lookup finds the case with exactly this value.
func (c *Corpus) Lookup(value string) (Case, bool) {
	i, ok := c.byValue[value]
	if !ok {
		return Case{}, false
	}
	return c.cases[i], true
}

// Classify returns the expected outcome for a value, if the corpus knows it.
func (c *Corpus) Classify(value string) (Outcome, bool) {
	cs, ok := c.Lookup(value)
	return cs.expected, ok
}
