// Package formdef describes the form under test: where it lives, which markup variant it
// uses, how long to wait for it, and how to launch the browser that drives it.
package formdef

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/launchdarkly/form-contract-tests/browser"
	"github.com/launchdarkly/form-contract-tests/formpage"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	defaultWindowWidth  = 1920
	defaultWindowHeight = 1080
)

type TargetParams struct {
	URL               string              `json:"url"`
	Selectors         formpage.Selectors  `json:"selectors"`
	SuccessView       string              `json:"successView,omitempty"`
	WaitTimeoutMS     ldvalue.OptionalInt `json:"waitTimeoutMs,omitempty"`
	PollIntervalMS    ldvalue.OptionalInt `json:"pollIntervalMs,omitempty"`
	ScenarioTimeoutMS ldvalue.OptionalInt `json:"scenarioTimeoutMs,omitempty"`
	Parallel          ldvalue.OptionalInt `json:"parallel,omitempty"`
	Browser           BrowserParams       `json:"browser"`
}

type BrowserParams struct {
	ExecPath string `json:"execPath,omitempty"`
	// ShowWindow runs the browser with a visible window instead of headless.
	ShowWindow   bool                `json:"showWindow,omitempty"`
	WindowWidth  ldvalue.OptionalInt `json:"windowWidth,omitempty"`
	WindowHeight ldvalue.OptionalInt `json:"windowHeight,omitempty"`
	// Flags are extra Chrome switches to turn on, such as "no-sandbox".
	Flags []string `json:"flags,omitempty"`
}

// ReadTargetParams loads target parameters from a JSON file. Unknown fields are an error,
// so that a misspelled setting is not silently ignored.
func ReadTargetParams(path string) (TargetParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TargetParams{}, fmt.Errorf("cannot read target configuration: %w", err)
	}
	return ParseTargetParams(data)
}

func ParseTargetParams(data []byte) (TargetParams, error) {
	var p TargetParams
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return TargetParams{}, fmt.Errorf("invalid target configuration: %w", err)
	}
	return p, nil
}

func (p TargetParams) Validate() error {
	var errs []error
	if p.URL == "" {
		errs = append(errs, errors.New("url is required"))
	} else if u, err := url.Parse(p.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file") {
		errs = append(errs, fmt.Errorf("url %q is not an http, https or file URL", p.URL))
	}
	if _, err := formpage.ParseSuccessView(p.SuccessView); err != nil {
		errs = append(errs, err)
	}
	if err := p.Selectors.WithDefaults().Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, f := range []struct {
		name  string
		value ldvalue.OptionalInt
	}{
		{"waitTimeoutMs", p.WaitTimeoutMS},
		{"pollIntervalMs", p.PollIntervalMS},
		{"scenarioTimeoutMs", p.ScenarioTimeoutMS},
		{"parallel", p.Parallel},
		{"browser.windowWidth", p.Browser.WindowWidth},
		{"browser.windowHeight", p.Browser.WindowHeight},
	} {
		if f.value.IsDefined() && f.value.IntValue() <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", f.name))
		}
	}
	return errors.Join(errs...)
}

// PageOptions converts the parameters into page object options. Call Validate first.
func (p TargetParams) PageOptions() formpage.Options {
	view, _ := formpage.ParseSuccessView(p.SuccessView)
	return formpage.Options{
		Selectors:    p.Selectors.WithDefaults(),
		SuccessView:  view,
		WaitTimeout:  millis(p.WaitTimeoutMS, formpage.DefaultWaitTimeout),
		PollInterval: millis(p.PollIntervalMS, formpage.DefaultPollInterval),
	}
}

// ScenarioTimeout returns the configured bound for one scenario, or def if there is none.
func (p TargetParams) ScenarioTimeout(def time.Duration) time.Duration {
	return millis(p.ScenarioTimeoutMS, def)
}

func (b BrowserParams) ChromeOptions() browser.ChromeOptions {
	opts := browser.ChromeOptions{
		ExecPath:     b.ExecPath,
		Headless:     !b.ShowWindow,
		WindowWidth:  b.WindowWidth.OrElse(defaultWindowWidth),
		WindowHeight: b.WindowHeight.OrElse(defaultWindowHeight),
	}
	if len(b.Flags) > 0 {
		opts.Flags = make(map[string]interface{}, len(b.Flags))
		for _, f := range b.Flags {
			opts.Flags[f] = true
		}
	}
	return opts
}

func millis(v ldvalue.OptionalInt, def time.Duration) time.Duration {
	if !v.IsDefined() {
		return def
	}
	return time.Duration(v.IntValue()) * time.Millisecond
}
