package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"github.com/launchdarkly/form-contract-tests/framework"
)

// ChromeOptions controls how ChromeSession launches the browser process.
type ChromeOptions struct {
	// ExecPath is the Chrome binary. If empty, chromedp looks in the usual places.
	ExecPath     string
	Headless     bool
	WindowWidth  int
	WindowHeight int
	// Flags are extra command line switches, for instance "no-sandbox": true.
	Flags map[string]interface{}
}

// ChromeSession is a Session backed by a dedicated Chrome process, driven with chromedp.
type ChromeSession struct {
	id          string
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      framework.Logger
	closeOnce   sync.Once
	closeErr    error
}

var _ Session = (*ChromeSession)(nil)

// NewChromeOpener returns an Opener that launches a new Chrome process for every session.
func NewChromeOpener(opts ChromeOptions) Opener {
	return func(ctx context.Context, logger framework.Logger) (Session, error) {
		return OpenChrome(ctx, opts, logger)
	}
}

// OpenChrome launches Chrome and opens one tab. The browser keeps running after ctx ends;
// only Close stops it. ctx bounds the launch itself.
func OpenChrome(ctx context.Context, opts ChromeOptions, logger framework.Logger) (*ChromeSession, error) {
	id := uuid.NewString()
	if logger == nil {
		logger = framework.NullLogger()
	}
	logger = framework.WithPrefix(logger, "[chrome "+id[:8]+"] ")

	allocOpts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", opts.Headless))
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight))
	}
	for name, value := range opts.Flags {
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Printf),
		chromedp.WithErrorf(logger.Printf),
	)
	s := &ChromeSession{
		id:          id,
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		logger:      logger,
	}

	// The first Run allocates the browser. It must use the tab context itself: a derived
	// context with a deadline would take the whole browser down when it expires.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()
	select {
	case err := <-started:
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	case <-ctx.Done():
		_ = s.Close()
		<-started
		return nil, fmt.Errorf("failed to start browser: %w", ctx.Err())
	}
	logger.Printf("Browser session started")
	return s, nil
}

// ID returns a unique identifier for this session, used in log output.
func (s *ChromeSession) ID() string {
	return s.id
}

// run executes actions in the tab, bounded by both ctx and the session lifetime.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		opCtx, cancelDeadline = context.WithDeadline(opCtx, deadline)
		defer cancelDeadline()
	}
	err := chromedp.Run(opCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w (%s)", ctx.Err(), err)
	}
	return err
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	s.logger.Printf("Navigating to %s", url)
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

func (s *ChromeSession) FindElement(ctx context.Context, sel Selector) (Element, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Nodes(sel.CSS(), &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("query for %s failed: %w", sel, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sel)
	}
	return &chromeElement{session: s, sel: sel, nodeID: nodes[0].NodeID}, nil
}

// Close shuts down the tab and the browser process. It is safe to call more than once.
func (s *ChromeSession) Close() error {
	s.closeOnce.Do(func() {
		err := chromedp.Cancel(s.ctx)
		s.cancel()
		s.allocCancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = fmt.Errorf("failed to close browser: %w", err)
		}
		s.logger.Printf("Browser session closed")
	})
	return s.closeErr
}

type chromeElement struct {
	session *ChromeSession
	sel     Selector
	nodeID  cdp.NodeID
}

func (e *chromeElement) ids() []cdp.NodeID {
	return []cdp.NodeID{e.nodeID}
}

func (e *chromeElement) SendKeys(ctx context.Context, text string) error {
	if err := e.session.run(ctx, chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("typing into %s failed: %w", e.sel, err)
	}
	return nil
}

func (e *chromeElement) Click(ctx context.Context) error {
	if err := e.session.run(ctx, chromedp.Click(e.ids(), chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("clicking %s failed: %w", e.sel, err)
	}
	return nil
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.session.run(ctx, chromedp.Text(e.ids(), &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("reading text of %s failed: %w", e.sel, err)
	}
	return text, nil
}

func (e *chromeElement) Value(ctx context.Context) (string, error) {
	var value string
	if err := e.session.run(ctx, chromedp.Value(e.ids(), &value, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("reading value of %s failed: %w", e.sel, err)
	}
	return value, nil
}

// IsDisplayed reports whether the element is rendered. An element without a box model
// (display:none, or detached) is not displayed.
func (e *chromeElement) IsDisplayed(ctx context.Context) (bool, error) {
	var displayed bool
	err := e.session.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := dom.GetBoxModel().WithNodeID(e.nodeID).Do(ctx)
		displayed = err == nil
		return nil
	}))
	if err != nil {
		return false, fmt.Errorf("checking visibility of %s failed: %w", e.sel, err)
	}
	return displayed, nil
}
