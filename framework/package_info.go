// Package framework contains the low-level implementation of test harness infrastructure
// that is not specific to the form under test.
//
// The general model is:
//
// 1. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. Resources acquired by a test are released through Context.Defer,
// which runs on every exit path including failed assertions and panics.
//
// 2. Tests can be selected or excluded with regular expressions matched against the full
// test path.
//
// 3. Each test has its own debug logger. Its output is handed to the TestLogger when the
// test finishes, so that it can be shown only for failed tests.
//
// The domain-specific code that knows what is being tested is responsible for acquiring the
// browser sessions, driving the page, and providing a domain-specific test API on top of the
// test context.
package framework
