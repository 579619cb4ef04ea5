package formtests

import (
	"context"

	"github.com/launchdarkly/form-contract-tests/corpus"
	"github.com/launchdarkly/form-contract-tests/formstate"
	"github.com/launchdarkly/form-contract-tests/framework"

	"golang.org/x/sync/errgroup"
)

type scenarioGroup struct {
	name      string
	scenarios []Scenario
}

// RunTestSuite runs every scenario generated from the corpus, one subtest per scenario,
// grouped as "accepted", "rejected", "gender" and "reset". Cancelling ctx stops the run; the
// scenarios still running fail and release their sessions.
func RunTestSuite(
	ctx context.Context,
	env *Environment,
	c *corpus.Corpus,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	groups := groupScenarios(c)
	return framework.Run(filter, testLogger, func(fc *framework.Context) {
		t := newTestScope(fc, ctx, env)
		for _, g := range groups {
			t.Run(g.name, func(t *T) {
				t.runScenarios(g.scenarios)
			})
		}
	})
}

func groupScenarios(c *corpus.Corpus) []scenarioGroup {
	var groups []scenarioGroup
	index := make(map[string]int)
	for s := range ScenariosFor(c, formstate.NewMachine(c)) {
		i, ok := index[s.Group]
		if !ok {
			i = len(groups)
			index[s.Group] = i
			groups = append(groups, scenarioGroup{name: s.Group})
		}
		groups[i].scenarios = append(groups[i].scenarios, s)
	}
	return groups
}

func (t *T) runScenarios(scenarios []Scenario) {
	if t.env.Parallel < 2 {
		for _, s := range scenarios {
			t.Run(s.Name, func(t *T) { t.RunScenario(s) })
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(t.env.Parallel)
	for _, s := range scenarios {
		g.Go(func() error {
			t.Run(s.Name, func(t *T) { t.RunScenario(s) })
			return nil
		})
	}
	_ = g.Wait()
}
