package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/launchdarkly/form-contract-tests/corpus"
	"github.com/launchdarkly/form-contract-tests/formdef"
	"github.com/launchdarkly/form-contract-tests/framework"

	"github.com/alessio/shellescape"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const defaultPort = 8111

type commandParams struct {
	formURL     string
	configFile  string
	corpusFile  string
	successView string
	parallel    int
	showWindow  bool
	serveRef    bool
	host        string
	port        int
	filters     framework.RegexFilters
	debug       bool
	debugAll    bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.formURL, "url", "", "URL of the form page (overrides the configuration file)")
	fs.StringVar(&c.configFile, "config", "", "JSON file describing the form under test")
	fs.StringVar(&c.corpusFile, "corpus", "", "JSON file with email cases to add to the built-in corpus")
	fs.StringVar(&c.successView, "success-view", "", `confirmation view to check: "echoed-email", "result-text" or "both"`)
	fs.IntVar(&c.parallel, "parallel", 0, "maximum number of browser sessions to run at once")
	fs.BoolVar(&c.showWindow, "show-window", false, "run the browser with a visible window")
	fs.BoolVar(&c.serveRef, "serve-reference", false, "test the built-in reference form instead of a deployed one")
	fs.StringVar(&c.host, "host", "localhost", "hostname the reference form listens on")
	fs.IntVar(&c.port, "port", defaultPort, "port the reference form listens on")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.formURL == "" && c.configFile == "" && !c.serveRef {
		fmt.Fprintln(os.Stderr, "-url, -config or -serve-reference is required")
		fs.Usage()
		return false
	}
	return true
}

// target reads the configuration file, if any, and applies the command line overrides.
func (c *commandParams) target() (formdef.TargetParams, error) {
	var target formdef.TargetParams
	if c.configFile != "" {
		t, err := formdef.ReadTargetParams(c.configFile)
		if err != nil {
			return target, err
		}
		target = t
	}
	if c.formURL != "" {
		target.URL = c.formURL
	}
	if c.successView != "" {
		target.SuccessView = c.successView
	}
	if c.parallel != 0 {
		target.Parallel = ldvalue.NewOptionalInt(c.parallel)
	}
	if c.showWindow {
		target.Browser.ShowWindow = true
	}
	return target, target.Validate()
}

// corpus builds the email corpus: the built-in cases plus any loaded from -corpus.
func (c *commandParams) corpus() (*corpus.Corpus, error) {
	emails, err := corpus.Default()
	if err != nil {
		return nil, err
	}
	if c.corpusFile == "" {
		return emails, nil
	}
	f, err := os.Open(c.corpusFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read corpus file: %w", err)
	}
	defer f.Close()
	extra, err := corpus.Load(f)
	if err != nil {
		return nil, err
	}
	return emails.Merge(extra)
}

// rerunCommand returns a shell command that runs only the given tests, with the same
// target settings as this run.
func (c *commandParams) rerunCommand(program string, failures []framework.TestResult) string {
	var b commandBuilder
	b.add(program)
	if c.configFile != "" {
		b.add("-config", c.configFile)
	}
	if c.formURL != "" {
		b.add("-url", c.formURL)
	}
	if c.corpusFile != "" {
		b.add("-corpus", c.corpusFile)
	}
	if c.successView != "" {
		b.add("-success-view", c.successView)
	}
	if c.showWindow {
		b.add("-show-window")
	}
	if c.serveRef {
		b.add("-serve-reference", "-host", c.host, "-port", strconv.Itoa(c.port))
	}
	// A test only runs if its parent groups also pass the filter.
	seen := make(map[string]bool)
	for _, f := range failures {
		for i := range f.TestID.Path {
			id := framework.TestID{Path: f.TestID.Path[:i+1]}.String()
			if !seen[id] {
				seen[id] = true
				b.add("-run", "^"+regexp.QuoteMeta(id)+"$")
			}
		}
	}
	b.add("-debug")
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
