package fakeform

import (
	"context"
	"sync"

	"github.com/launchdarkly/form-contract-tests/browser"
	"github.com/launchdarkly/form-contract-tests/framework"
)

// Pool opens a new simulated form for every session and remembers all of them, so that a
// test can check afterwards that every session was released.
type Pool struct {
	behavior Behavior
	// OpenError, if set, makes Open fail.
	OpenError error
	lock      sync.Mutex
	forms     []*Form
}

func NewPool(b Behavior) *Pool {
	return &Pool{behavior: b}
}

// Open implements browser.Opener.
func (p *Pool) Open(ctx context.Context, logger framework.Logger) (browser.Session, error) {
	if p.OpenError != nil {
		return nil, p.OpenError
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = framework.NullLogger()
	}
	f := New(p.behavior)
	p.lock.Lock()
	p.forms = append(p.forms, f)
	p.lock.Unlock()
	logger.Printf("Opened simulated form session")
	return f, nil
}

// Forms returns every form opened so far.
func (p *Pool) Forms() []*Form {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]*Form(nil), p.forms...)
}

// AllClosed reports whether every opened form has been closed.
func (p *Pool) AllClosed() bool {
	for _, f := range p.Forms() {
		if !f.Closed() {
			return false
		}
	}
	return true
}
