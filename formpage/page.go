// Package formpage is the page object for the email form. Each user action is one method,
// and each method waits, within a bounded time, until the page has reacted enough for the
// next observation to be meaningful.
package formpage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/launchdarkly/form-contract-tests/browser"
	"github.com/launchdarkly/form-contract-tests/formstate"
	"github.com/launchdarkly/form-contract-tests/framework"
)

const (
	DefaultWaitTimeout  = time.Second * 5
	DefaultPollInterval = time.Millisecond * 100
)

type Options struct {
	Selectors   Selectors
	SuccessView SuccessView
	// WaitTimeout bounds every wait for the page to reach a state.
	WaitTimeout  time.Duration
	PollInterval time.Duration
	Logger       framework.Logger
}

// Page drives one form through one browser session. It is not safe for concurrent use.
type Page struct {
	session browser.Session
	url     string
	opts    Options
	logger  framework.Logger
	// kind is the state the page is believed to be in, used to describe failures.
	kind formstate.Kind
}

func New(session browser.Session, url string, opts Options) *Page {
	opts.Selectors = opts.Selectors.WithDefaults()
	if opts.SuccessView == "" {
		opts.SuccessView = EchoedEmail
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Page{session: session, url: url, opts: opts, logger: logger}
}

func (p *Page) SuccessView() SuccessView { return p.opts.SuccessView }

// Open loads the page and waits for the email input. The form is then Empty.
func (p *Page) Open(ctx context.Context) error {
	p.kind = formstate.Empty
	if err := p.session.Navigate(ctx, p.url); err != nil {
		return err
	}
	_, err := p.waitDisplayed(ctx, p.opts.Selectors.EmailInput)
	return err
}

// EnterEmail types text into the email input.
func (p *Page) EnterEmail(ctx context.Context, text string) error {
	p.logger.Printf("Entering email %q", text)
	input, err := p.waitDisplayed(ctx, p.opts.Selectors.EmailInput)
	if err != nil {
		return err
	}
	if err := input.SendKeys(ctx, text); err != nil {
		return err
	}
	p.kind = formstate.Editing
	return nil
}

// SelectGender clicks the radio button for g.
func (p *Page) SelectGender(ctx context.Context, g formstate.Gender) error {
	p.logger.Printf("Selecting gender %s", g)
	sel := p.opts.Selectors.BoyGender
	if g == formstate.Girl {
		sel = p.opts.Selectors.GirlGender
	}
	radio, err := p.waitDisplayed(ctx, sel)
	if err != nil {
		return err
	}
	if err := radio.Click(ctx); err != nil {
		return err
	}
	p.kind = formstate.Editing
	return nil
}

// Submit clicks the submit control and waits until the page shows either its confirmation
// view or its error view.
func (p *Page) Submit(ctx context.Context) error {
	p.logger.Printf("Submitting")
	button, err := p.waitDisplayed(ctx, p.opts.Selectors.Submit)
	if err != nil {
		return err
	}
	if err := button.Click(ctx); err != nil {
		return err
	}
	success := p.successSelector()
	var outcome formstate.Kind
	err = p.poll(ctx, success, "confirmation or error view to be displayed", true,
		func(ctx context.Context) (bool, bool, error) {
			okFound, okShown, err := p.displayed(ctx, success)
			if err != nil || okShown {
				outcome = formstate.SubmittedOk
				return okFound, okShown, err
			}
			_, errShown, err := p.displayed(ctx, p.opts.Selectors.FormError)
			if errShown {
				outcome = formstate.SubmittedError
			}
			return okFound, errShown, err
		})
	if err != nil {
		return err
	}
	p.kind = outcome
	p.logger.Printf("Form reacted with %s", outcome)
	return nil
}

// ClickAnotherEmail clicks the "another email" link and waits until the link is hidden and
// the email input is back.
func (p *Page) ClickAnotherEmail(ctx context.Context) error {
	p.logger.Printf("Clicking another email")
	link, err := p.waitDisplayed(ctx, p.opts.Selectors.AnotherEmail)
	if err != nil {
		return err
	}
	if err := link.Click(ctx); err != nil {
		return err
	}
	p.kind = formstate.Empty
	if err := p.waitHidden(ctx, p.opts.Selectors.AnotherEmail); err != nil {
		return err
	}
	_, err = p.waitDisplayed(ctx, p.opts.Selectors.EmailInput)
	return err
}

// ReadEchoedEmail returns the address shown by the confirmation view.
func (p *Page) ReadEchoedEmail(ctx context.Context) (string, error) {
	return p.readText(ctx, p.opts.Selectors.YourEmail)
}

// ReadResultText returns the confirmation message.
func (p *Page) ReadResultText(ctx context.Context) (string, error) {
	return p.readText(ctx, p.opts.Selectors.ResultText)
}

// ReadErrorText returns the inline validation message.
func (p *Page) ReadErrorText(ctx context.Context) (string, error) {
	return p.readText(ctx, p.opts.Selectors.FormError)
}

// IsResetAffordanceVisible reports whether the "another email" link is displayed right now.
func (p *Page) IsResetAffordanceVisible(ctx context.Context) (bool, error) {
	_, shown, err := p.displayed(ctx, p.opts.Selectors.AnotherEmail)
	return shown, err
}

// ReadEmailInputValue returns what the email input currently holds.
func (p *Page) ReadEmailInputValue(ctx context.Context) (string, error) {
	input, err := p.waitPresent(ctx, p.opts.Selectors.EmailInput)
	if err != nil {
		return "", err
	}
	return input.Value(ctx)
}

// Observe takes a snapshot of every view without waiting. Missing elements count as not
// displayed.
func (p *Page) Observe(ctx context.Context) (formstate.Observation, error) {
	var o formstate.Observation
	sels := p.opts.Selectors

	input, err := p.find(ctx, sels.EmailInput)
	if err != nil {
		return o, err
	}
	if input != nil {
		if o.InputDisplayed, err = input.IsDisplayed(ctx); err != nil {
			return o, err
		}
		if o.InputDisplayed {
			if o.InputValue, err = input.Value(ctx); err != nil {
				return o, err
			}
		}
	}
	if _, o.ResultDisplayed, err = p.displayed(ctx, p.successSelector()); err != nil {
		return o, err
	}
	if _, o.ResetDisplayed, err = p.displayed(ctx, sels.AnotherEmail); err != nil {
		return o, err
	}
	formError, err := p.find(ctx, sels.FormError)
	if err != nil {
		return o, err
	}
	if formError != nil {
		if o.ErrorDisplayed, err = formError.IsDisplayed(ctx); err != nil {
			return o, err
		}
		if o.ErrorDisplayed {
			if o.ErrorText, err = formError.Text(ctx); err != nil {
				return o, err
			}
			o.ErrorText = strings.TrimSpace(o.ErrorText)
		}
	}
	return o, nil
}

func (p *Page) successSelector() browser.Selector {
	if p.opts.SuccessView == ResultText {
		return p.opts.Selectors.ResultText
	}
	return p.opts.Selectors.YourEmail
}

// readText waits for the element to be displayed and returns its text with surrounding
// whitespace removed, as a WebDriver client reports it.
func (p *Page) readText(ctx context.Context, sel browser.Selector) (string, error) {
	el, err := p.waitDisplayed(ctx, sel)
	if err != nil {
		return "", err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// find looks up an element once. It returns nil, without an error, if there is none.
func (p *Page) find(ctx context.Context, sel browser.Selector) (browser.Element, error) {
	el, err := p.session.FindElement(ctx, sel)
	if errors.Is(err, browser.ErrNotFound) {
		return nil, nil
	}
	return el, err
}

func (p *Page) displayed(ctx context.Context, sel browser.Selector) (found, shown bool, err error) {
	el, err := p.find(ctx, sel)
	if err != nil || el == nil {
		return false, false, err
	}
	shown, err = el.IsDisplayed(ctx)
	return true, shown, err
}

func (p *Page) waitPresent(ctx context.Context, sel browser.Selector) (browser.Element, error) {
	var el browser.Element
	err := p.poll(ctx, sel, "element to be present", true, func(ctx context.Context) (bool, bool, error) {
		var err error
		el, err = p.find(ctx, sel)
		return el != nil, el != nil, err
	})
	return el, err
}

func (p *Page) waitDisplayed(ctx context.Context, sel browser.Selector) (browser.Element, error) {
	var el browser.Element
	err := p.poll(ctx, sel, "element to be displayed", true, func(ctx context.Context) (bool, bool, error) {
		var err error
		if el, err = p.find(ctx, sel); err != nil || el == nil {
			return false, false, err
		}
		shown, err := el.IsDisplayed(ctx)
		return true, shown, err
	})
	return el, err
}

// waitHidden waits until the element is not displayed. An element that is gone is hidden.
func (p *Page) waitHidden(ctx context.Context, sel browser.Selector) error {
	return p.poll(ctx, sel, "element to be hidden", false, func(ctx context.Context) (bool, bool, error) {
		found, shown, err := p.displayed(ctx, sel)
		return found, !shown, err
	})
}

// poll calls check until it reports done, for at most WaitTimeout. check also reports
// whether the element was found at all, so that a wait for an element that never existed
// is reported as an ElementNotFoundError when mustExist is set. Errors from check end the
// wait at once: a broken session is not retried.
func (p *Page) poll(
	ctx context.Context,
	sel browser.Selector,
	condition string,
	mustExist bool,
	check func(context.Context) (found, done bool, err error),
) error {
	waitCtx, cancel := context.WithTimeout(ctx, p.opts.WaitTimeout)
	defer cancel()
	start := time.Now()
	everFound := false
	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()
	for {
		found, done, err := check(waitCtx)
		everFound = everFound || found
		if err == nil && done {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("stopped waiting for %s: %w", sel, ctx.Err())
		}
		if err != nil && waitCtx.Err() == nil {
			return err
		}
		if err == nil {
			select {
			case <-ticker.C:
				continue
			case <-waitCtx.Done():
			}
			if ctx.Err() != nil {
				return fmt.Errorf("stopped waiting for %s: %w", sel, ctx.Err())
			}
		}
		waited := time.Since(start).Round(time.Millisecond)
		if mustExist && !everFound {
			return &ElementNotFoundError{Selector: sel, State: p.kind, Waited: waited}
		}
		return &TimeoutError{Selector: sel, Condition: condition, State: p.kind, Waited: waited}
	}
}
