package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/launchdarkly/form-contract-tests/browser"
	"github.com/launchdarkly/form-contract-tests/corpus"
	"github.com/launchdarkly/form-contract-tests/formserver"
	"github.com/launchdarkly/form-contract-tests/formstate"
	"github.com/launchdarkly/form-contract-tests/formtests"
	"github.com/launchdarkly/form-contract-tests/framework"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	var params commandParams
	if !params.Read(args) {
		return 1
	}

	// The corpus must be complete before any browser starts.
	emails, err := params.corpus()
	if err != nil {
		if errors.Is(err, corpus.ErrCorpusBuild) {
			fmt.Fprintf(os.Stderr, "Email corpus is inconsistent: %s\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Cannot load email corpus: %s\n", err)
		}
		return 1
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	if params.serveRef {
		server, err := formserver.Start(
			net.JoinHostPort(params.host, strconv.Itoa(params.port)),
			referenceValidator(emails),
			mainDebugLogger,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Reference form error: %s\n", err)
			return 1
		}
		defer server.Close()
		if params.formURL == "" {
			params.formURL = server.URL()
		}
	}

	target, err := params.target()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid target configuration: %s\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &formtests.Environment{
		URL:             target.URL,
		Page:            target.PageOptions(),
		OpenSession:     browser.NewChromeOpener(target.Browser.ChromeOptions()),
		ScenarioTimeout: target.ScenarioTimeout(formtests.DefaultScenarioTimeout),
		Parallel:        target.Parallel.OrElse(1),
	}

	fmt.Printf("Testing form at %s (%d email cases, success view %q)\n", target.URL, emails.Len(), env.Page.SuccessView)
	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)

	fmt.Println("Running test suite")

	testLogger := &ConsoleTestLogger{
		Out:                  os.Stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := formtests.RunTestSuite(ctx, env, emails, params.filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To run only the failed tests:")
		fmt.Printf("  %s\n", params.rerunCommand(args[0], results.Failures))
		return 1
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "Test run was interrupted")
		return 1
	}
	return 0
}

// referenceValidator makes the reference form accept exactly the addresses the corpus
// labels as accepted, regardless of gender.
func referenceValidator(emails *corpus.Corpus) formserver.AcceptFunc {
	return func(email string, _ formstate.Gender) bool {
		outcome, ok := emails.Classify(email)
		return ok && outcome == corpus.Accepted
	}
}
