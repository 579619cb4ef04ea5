package formtests

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/launchdarkly/form-contract-tests/corpus"
	"github.com/launchdarkly/form-contract-tests/formpage"
	"github.com/launchdarkly/form-contract-tests/formstate"
)

const (
	GroupAccepted = "accepted"
	GroupRejected = "rejected"
	GroupGender   = "gender"
	GroupReset    = "reset"
)

// Scenario is one complete drive-and-assert run against a freshly loaded form.
type Scenario struct {
	Group string
	Name  string
	// Case is the corpus entry the scenario submits first.
	Case corpus.Case
	Run  func(ctx context.Context, page *formpage.Page) error
}

func (s Scenario) ID() string {
	return s.Group + "/" + s.Name
}

// AssertionMismatchError means the page did not show what the state machine expected.
type AssertionMismatchError struct {
	Scenario  string
	Rationale string
	What      string
	Expected  string
	Actual    string
	// Err is the underlying invariant violation, if there was one.
	Err error
}

func (e *AssertionMismatchError) Error() string {
	msg := fmt.Sprintf("%s: %s\n  expected: %s\n  actual:   %s", e.Scenario, e.What, e.Expected, e.Actual)
	if e.Rationale != "" {
		msg += "\n  case:     " + e.Rationale
	}
	if e.Err != nil {
		msg += "\n  details:  " + e.Err.Error()
	}
	return msg
}

func (e *AssertionMismatchError) Unwrap() error { return e.Err }

// ScenariosFor returns one scenario per corpus case, followed by the gender and reset
// scenarios, which use the corpus's reference address. The sequence is restartable and
// builds scenarios only as they are consumed.
func ScenariosFor(c *corpus.Corpus, m *formstate.Machine) iter.Seq[Scenario] {
	return func(yield func(Scenario) bool) {
		for cs := range c.All() {
			if !yield(submitScenario(m, cs)) {
				return
			}
		}
		ref, ok := referenceCase(c)
		if !ok {
			return
		}
		for _, s := range genderScenarios(m, ref) {
			if !yield(s) {
				return
			}
		}
		for _, s := range resetScenarios(m, ref, firstMalformedCase(c)) {
			if !yield(s) {
				return
			}
		}
	}
}

func referenceCase(c *corpus.Corpus) (corpus.Case, bool) {
	if cs, ok := c.Lookup(corpus.ReferenceEmail); ok && cs.Expected() == corpus.Accepted {
		return cs, true
	}
	for cs := range c.Accepted() {
		return cs, true
	}
	return corpus.Case{}, false
}

func firstMalformedCase(c *corpus.Corpus) *corpus.Case {
	for cs := range c.Rejected() {
		if !cs.IsEmpty() {
			return &cs
		}
	}
	return nil
}

func submitScenario(m *formstate.Machine, cs corpus.Case) Scenario {
	s := Scenario{Group: groupFor(cs), Name: cs.Rationale(), Case: cs}
	s.Run = func(ctx context.Context, page *formpage.Page) error {
		d := newDriver(ctx, page, m, s)
		return d.all(d.open, d.enterEmail(cs.Value()), d.submit, d.assertTerminal)
	}
	return s
}

func groupFor(cs corpus.Case) string {
	if cs.Expected() == corpus.Accepted {
		return GroupAccepted
	}
	return GroupRejected
}

func genderScenarios(m *formstate.Machine, ref corpus.Case) []Scenario {
	var ret []Scenario
	for _, p := range []struct {
		name    string
		genders []formstate.Gender
	}{
		{"boy", []formstate.Gender{formstate.Boy}},
		{"girl", []formstate.Gender{formstate.Girl}},
		{"boy girl boy girl", []formstate.Gender{formstate.Boy, formstate.Girl, formstate.Boy, formstate.Girl}},
	} {
		s := Scenario{Group: GroupGender, Name: p.name, Case: ref}
		genders := p.genders
		s.Run = func(ctx context.Context, page *formpage.Page) error {
			d := newDriver(ctx, page, m, s)
			steps := []func() error{d.open}
			for _, g := range genders {
				steps = append(steps, d.selectGender(g))
			}
			steps = append(steps, d.enterEmail(ref.Value()), d.submit, d.assertTerminal)
			return d.all(steps...)
		}
		ret = append(ret, s)
	}
	return ret
}

func resetScenarios(m *formstate.Machine, ref corpus.Case, malformed *corpus.Case) []Scenario {
	clears := Scenario{Group: GroupReset, Name: "another email clears the input", Case: ref}
	clears.Run = func(ctx context.Context, page *formpage.Page) error {
		d := newDriver(ctx, page, m, clears)
		return d.all(d.open, d.enterEmail(ref.Value()), d.submit, d.assertTerminal,
			d.clickAnotherEmail, d.assertResetDone)
	}

	again := Scenario{Group: GroupReset, Name: "second submission after another email", Case: ref}
	again.Run = func(ctx context.Context, page *formpage.Page) error {
		d := newDriver(ctx, page, m, again)
		return d.all(d.open, d.enterEmail(ref.Value()), d.submit, d.clickAnotherEmail,
			d.enterEmail(ref.Value()), d.submit, d.assertTerminal)
	}
	ret := []Scenario{clears, again}

	if malformed != nil {
		bad := *malformed
		rejected := Scenario{Group: GroupReset, Name: "rejected address after another email", Case: ref}
		rejected.Run = func(ctx context.Context, page *formpage.Page) error {
			d := newDriver(ctx, page, m, rejected)
			return d.all(d.open, d.enterEmail(ref.Value()), d.submit, d.clickAnotherEmail,
				d.enterEmail(bad.Value()), d.submit, d.assertTerminal)
		}
		ret = append(ret, rejected)
	}
	return ret
}

// driver moves the model and the page through the same transitions, checking after every
// step that the page displays what the model state requires.
type driver struct {
	ctx      context.Context
	page     *formpage.Page
	machine  *formstate.Machine
	scenario Scenario
	state    formstate.State
}

func newDriver(ctx context.Context, page *formpage.Page, m *formstate.Machine, s Scenario) *driver {
	return &driver{ctx: ctx, page: page, machine: m, scenario: s, state: m.Initial()}
}

func (d *driver) all(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (d *driver) open() error {
	d.state = d.machine.Initial()
	if err := d.page.Open(d.ctx); err != nil {
		return fmt.Errorf("%s: open: %w", d.scenario.ID(), err)
	}
	return d.verify("page load")
}

func (d *driver) enterEmail(text string) func() error {
	return func() error {
		return d.step(fmt.Sprintf("entering %q", text),
			func(s formstate.State) (formstate.State, error) { return d.machine.EnterEmail(s, text) },
			func(ctx context.Context) error { return d.page.EnterEmail(ctx, text) })
	}
}

func (d *driver) selectGender(g formstate.Gender) func() error {
	return func() error {
		return d.step("selecting "+g.String(),
			func(s formstate.State) (formstate.State, error) { return d.machine.SelectGender(s, g) },
			func(ctx context.Context) error { return d.page.SelectGender(ctx, g) })
	}
}

func (d *driver) submit() error {
	return d.step("submitting", d.machine.Submit, d.page.Submit)
}

func (d *driver) clickAnotherEmail() error {
	return d.step("clicking another email", d.machine.ClickAnotherEmail, d.page.ClickAnotherEmail)
}

func (d *driver) step(
	what string,
	model func(formstate.State) (formstate.State, error),
	act func(context.Context) error,
) error {
	next, err := model(d.state)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", d.scenario.ID(), what, err)
	}
	if err := act(d.ctx); err != nil {
		return fmt.Errorf("%s: %s: %w", d.scenario.ID(), what, err)
	}
	d.state = next
	return d.verify(what)
}

func (d *driver) verify(after string) error {
	obs, err := d.page.Observe(d.ctx)
	if err != nil {
		return fmt.Errorf("%s: observing page after %s: %w", d.scenario.ID(), after, err)
	}
	if err := d.state.Check(obs); err != nil {
		return d.mismatch("page after "+after, d.state.String(), obs.String(), err)
	}
	return nil
}

// assertTerminal checks the literal contract of the state a submission ended in.
func (d *driver) assertTerminal() error {
	switch d.state.Kind {
	case formstate.SubmittedOk:
		view := d.page.SuccessView()
		if view.ShowsEchoedEmail() {
			echoed, err := d.page.ReadEchoedEmail(d.ctx)
			if err != nil {
				return fmt.Errorf("%s: reading echoed email: %w", d.scenario.ID(), err)
			}
			if echoed != d.state.Email {
				return d.mismatch("echoed email", fmt.Sprintf("%q", d.state.Email), fmt.Sprintf("%q", echoed), nil)
			}
		}
		if view.ShowsResultText() {
			text, err := d.page.ReadResultText(d.ctx)
			if err != nil {
				return fmt.Errorf("%s: reading confirmation: %w", d.scenario.ID(), err)
			}
			if !strings.Contains(text, formstate.SuccessLiteral) {
				return d.mismatch("confirmation message",
					fmt.Sprintf("text containing %q", formstate.SuccessLiteral), fmt.Sprintf("%q", text), nil)
			}
		}
	case formstate.SubmittedError:
		text, err := d.page.ReadErrorText(d.ctx)
		if err != nil {
			return fmt.Errorf("%s: reading error message: %w", d.scenario.ID(), err)
		}
		literal := d.state.Family.Literal()
		if !strings.Contains(text, literal) {
			return d.mismatch(fmt.Sprintf("%s error message", d.state.Family),
				fmt.Sprintf("text containing %q", literal), fmt.Sprintf("%q", text), nil)
		}
	default:
		return fmt.Errorf("%s: scenario ended in non-terminal state %s", d.scenario.ID(), d.state)
	}
	return nil
}

// assertResetDone checks the "another email" postconditions through the page's observers.
func (d *driver) assertResetDone() error {
	value, err := d.page.ReadEmailInputValue(d.ctx)
	if err != nil {
		return fmt.Errorf("%s: reading email input: %w", d.scenario.ID(), err)
	}
	if value != "" {
		return d.mismatch("email input after another email", `""`, fmt.Sprintf("%q", value), nil)
	}
	visible, err := d.page.IsResetAffordanceVisible(d.ctx)
	if err != nil {
		return fmt.Errorf("%s: checking another-email link: %w", d.scenario.ID(), err)
	}
	if visible {
		return d.mismatch("another-email link after clicking it", "not displayed", "displayed", nil)
	}
	return nil
}

func (d *driver) mismatch(what, expected, actual string, cause error) error {
	return &AssertionMismatchError{
		Scenario:  d.scenario.ID(),
		Rationale: d.scenario.Case.Rationale(),
		What:      what,
		Expected:  expected,
		Actual:    actual,
		Err:       cause,
	}
}
