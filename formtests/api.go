package formtests

import (
	"context"
	"time"

	"github.com/launchdarkly/form-contract-tests/browser"
	"github.com/launchdarkly/form-contract-tests/formpage"
	"github.com/launchdarkly/form-contract-tests/framework"

	"github.com/stretchr/testify/require"
)

const DefaultScenarioTimeout = time.Second * 30

// Environment describes the form under test and how to reach it.
type Environment struct {
	// URL is the address of the form page.
	URL string
	// Page configures selectors, the success contract, and wait bounds. Its Logger is
	// replaced by each test's debug logger.
	Page formpage.Options
	// OpenSession starts a new, independent browser session.
	OpenSession browser.Opener
	// ScenarioTimeout bounds one whole scenario, including opening the session. Zero means
	// DefaultScenarioTimeout.
	ScenarioTimeout time.Duration
	// Parallel is the maximum number of scenarios run at once in each group. Values below 2
	// run scenarios one at a time.
	Parallel int
}

// T represents a test or subtest in the form test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner; those features are provided by the framework package. To make
// assertions, pass the *T to the assert and require packages as if it were a *testing.T.
type T struct {
	context *framework.Context
	ctx     context.Context
	env     *Environment
}

func newTestScope(c *framework.Context, ctx context.Context, env *Environment) *T {
	return &T{context: c, ctx: ctx, env: env}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.ctx, t.env))
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Defer schedules a function to run when the test ends, however it ends.
func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

// OpenPage starts a browser session for this test and returns a page object bound to it,
// along with a context that expires at the scenario timeout. The session is closed when the
// test ends; if it cannot be opened, the test fails and exits immediately.
func (t *T) OpenPage() (context.Context, *formpage.Page) {
	timeout := t.env.ScenarioTimeout
	if timeout <= 0 {
		timeout = DefaultScenarioTimeout
	}
	ctx, cancel := context.WithTimeout(t.ctx, timeout)
	t.Defer(cancel)

	session, err := t.env.OpenSession(ctx, t.context.DebugLogger())
	require.NoError(t, err, "could not start browser session")
	t.Defer(func() {
		if err := session.Close(); err != nil {
			t.Errorf("error closing browser session: %s", err)
		}
	})

	opts := t.env.Page
	opts.Logger = t.context.DebugLogger()
	return ctx, formpage.New(session, t.env.URL, opts)
}

// RunScenario runs one scenario against a fresh browser session.
func (t *T) RunScenario(s Scenario) {
	ctx, page := t.OpenPage()
	t.Debug("running %s with %q", s.ID(), s.Case.Value())
	require.NoError(t, s.Run(ctx, page))
}
