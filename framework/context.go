package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
	lock       sync.Mutex
}

// Context tracks the state of one test or subtest. It is used in the same way as *testing.T,
// except that it runs outside of the Go test runner.
//
// A Context is owned by a single goroutine. Subtests of the same parent may be started from
// different goroutines; results and test logger calls are serialized by the environment.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	cleanups    []func()
}

// Run starts a test run. The action receives the root Context, which has an empty TestID;
// individual tests are created with Context.Run.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		r := recover()
		c.runCleanups()
		if r != nil && !c.skipped {
			c.failed = true
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.errors = append(c.errors, addError)
				c.env.withLock(func() { c.env.testLogger.TestError(c.id, addError) })
			}
		}
		if len(c.id.Path) == 0 {
			return // the root context is not a test
		}
		result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped}
		c.env.withLock(func() {
			c.env.results.Tests = append(c.env.results.Tests, result)
			if c.failed {
				c.env.results.Failures = append(c.env.results.Failures, result)
			}
		})
	}()

	action(c)
}

// runCleanups calls deferred functions in reverse order. A panicking cleanup is recorded as
// a test error and does not prevent the remaining cleanups from running.
func (c *Context) runCleanups() {
	for len(c.cleanups) > 0 {
		last := len(c.cleanups) - 1
		fn := c.cleanups[last]
		c.cleanups = c.cleanups[:last]
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.failed = true
					err := fmt.Errorf("unexpected panic in deferred cleanup: %+v", r)
					c.errors = append(c.errors, err)
					c.env.withLock(func() { c.env.testLogger.TestError(c.id, err) })
				}
			}()
			fn()
		}()
	}
}

func (e *environment) withLock(fn func()) {
	e.lock.Lock()
	defer e.lock.Unlock()
	fn()
}

func (c *Context) ID() TestID {
	return c.id
}

// Run runs a subtest. It returns after the subtest and all of its deferred cleanups finish.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Plus(name)

	c.env.withLock(func() { c.env.testLogger.TestStarted(id) })
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.withLock(func() {
			c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
			c.env.results.Tests = append(c.env.results.Tests, TestResult{TestID: id, Skipped: true})
		})
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	c.env.withLock(func() {
		if c1.skipped {
			c.env.testLogger.TestSkipped(id, c1.skipReason)
		} else {
			c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
		}
	})
}

// Defer schedules a function to run when the test finishes, whether it passes, fails, is
// skipped, or panics. Deferred functions run in reverse order.
func (c *Context) Defer(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.withLock(func() { c.env.testLogger.TestError(c.id, reformatError(err)) })
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// reformatError removes the blank lines and indentation that testify puts in its failure
// messages, since those are meant for the Go test runner's output format.
func reformatError(err error) error {
	var lines []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return errors.New(strings.Join(lines, "\n"))
}
