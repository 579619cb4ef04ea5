package formpage

import (
	"fmt"

	"github.com/launchdarkly/form-contract-tests/browser"
)

// Selectors locate the parts of the form. They are the fixed contract with the markup of the
// page under test; a markup variant only needs a different Selectors value.
type Selectors struct {
	EmailInput   browser.Selector `json:"emailInput"`
	BoyGender    browser.Selector `json:"boyGender"`
	GirlGender   browser.Selector `json:"girlGender"`
	Submit       browser.Selector `json:"submit"`
	YourEmail    browser.Selector `json:"yourEmail"`
	ResultText   browser.Selector `json:"resultText"`
	AnotherEmail browser.Selector `json:"anotherEmail"`
	FormError    browser.Selector `json:"formError"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		EmailInput:   browser.Name("email"),
		BoyGender:    browser.ID("boy"),
		GirlGender:   browser.ID("girl"),
		Submit:       browser.ID("sendMe"),
		YourEmail:    browser.Class("your-email"),
		ResultText:   browser.Class("result-text"),
		AnotherEmail: browser.ID("anotherEmail"),
		FormError:    browser.Class("form-error"),
	}
}

// WithDefaults returns a copy in which every unset selector has its default value.
func (s Selectors) WithDefaults() Selectors {
	d := DefaultSelectors()
	for _, pair := range []struct{ target, def *browser.Selector }{
		{&s.EmailInput, &d.EmailInput},
		{&s.BoyGender, &d.BoyGender},
		{&s.GirlGender, &d.GirlGender},
		{&s.Submit, &d.Submit},
		{&s.YourEmail, &d.YourEmail},
		{&s.ResultText, &d.ResultText},
		{&s.AnotherEmail, &d.AnotherEmail},
		{&s.FormError, &d.FormError},
	} {
		if *pair.target == (browser.Selector{}) {
			*pair.target = *pair.def
		}
	}
	return s
}

func (s Selectors) Validate() error {
	for name, sel := range map[string]browser.Selector{
		"emailInput":   s.EmailInput,
		"boyGender":    s.BoyGender,
		"girlGender":   s.GirlGender,
		"submit":       s.Submit,
		"yourEmail":    s.YourEmail,
		"resultText":   s.ResultText,
		"anotherEmail": s.AnotherEmail,
		"formError":    s.FormError,
	} {
		if err := sel.Validate(); err != nil {
			return fmt.Errorf("selector %s: %w", name, err)
		}
	}
	return nil
}

// SuccessView says which view the page under test uses to confirm a submission.
type SuccessView string

const (
	// EchoedEmail is a view that shows the submitted address.
	EchoedEmail SuccessView = "echoed-email"
	// ResultText is a view with a confirmation message.
	ResultText SuccessView = "result-text"
	// BothViews means both views are shown and both are checked.
	BothViews SuccessView = "both"
)

func ParseSuccessView(s string) (SuccessView, error) {
	switch v := SuccessView(s); v {
	case EchoedEmail, ResultText, BothViews:
		return v, nil
	case "":
		return EchoedEmail, nil
	default:
		return "", fmt.Errorf("unknown success view %q (expected %q, %q or %q)", s, EchoedEmail, ResultText, BothViews)
	}
}

func (v SuccessView) ShowsEchoedEmail() bool { return v == EchoedEmail || v == BothViews }
func (v SuccessView) ShowsResultText() bool  { return v == ResultText || v == BothViews }
