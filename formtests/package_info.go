// Package formtests contains the form contract tests themselves and their supporting API.
//
// Scenarios are generated from the email corpus and the form state machine; each one drives a
// formpage.Page in lockstep with the model and asserts the visible contract after every step.
// Infrastructure that is not specific to the form, such as the test context, filtering, and
// result reporting, is in the lower-level framework package.
package formtests
