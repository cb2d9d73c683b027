package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"flightlink-service/pkg/logger"

	"github.com/chromedp/cdproto/inspector"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

const (
	surfaceBuffer      = 16
	surfaceLoadTimeout = 30 * time.Second
	scrollPasses       = 6
	scrollPause        = 700 * time.Millisecond
)

var errBrowserClosed = errors.New("browser is closed")

// ChromeBrowser is one Chrome process with a single tab, driven over CDP
type ChromeBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	targetID    target.ID

	gone      chan struct{}
	goneOnce  sync.Once
	closeOnce sync.Once
	logger    logger.Logger

	mu       sync.Mutex
	surfaces []context.CancelFunc
}

// NewChromeBrowser starts Chrome and attaches to its first tab
func NewChromeBrowser(parent context.Context, opts Options, logger logger.Logger) (*ChromeBrowser, error) {
	allocCtx, allocCancel := NewAllocator(parent, opts)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// First Run starts the browser
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	b := &ChromeBrowser{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		targetID:    chromedp.FromContext(ctx).Target.TargetID,
		gone:        make(chan struct{}),
		logger:      logger,
	}
	b.watch()
	return b, nil
}

// watch closes gone once the tab detaches, crashes or is destroyed
func (b *ChromeBrowser) watch() {
	chromedp.ListenTarget(b.ctx, func(ev interface{}) {
		switch ev.(type) {
		case *inspector.EventDetached, *inspector.EventTargetCrashed:
			b.markGone()
		}
	})
	chromedp.ListenBrowser(b.ctx, func(ev interface{}) {
		if e, ok := ev.(*target.EventTargetDestroyed); ok && e.TargetID == b.targetID {
			b.markGone()
		}
	})
	go func() {
		<-b.ctx.Done()
		b.markGone()
	}()
}

func (b *ChromeBrowser) markGone() {
	b.goneOnce.Do(func() { close(b.gone) })
}

// run executes actions on the tab, bounded by ctx as well as the tab lifetime
func (b *ChromeBrowser) run(ctx context.Context, actions ...chromedp.Action) error {
	if !b.IsConnected() {
		return errBrowserClosed
	}
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url in the tab and waits for the load event
func (b *ChromeBrowser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, chromedp.Navigate(url))
}

// Click clicks the first node matching sel once it is visible
func (b *ChromeBrowser) Click(ctx context.Context, sel string) error {
	return b.run(ctx, chromedp.Click(sel, chromedp.BySearch))
}

// Fill replaces the value of the input matching sel with text
func (b *ChromeBrowser) Fill(ctx context.Context, sel, text string) error {
	return b.run(ctx,
		chromedp.WaitVisible(sel, chromedp.BySearch),
		chromedp.SetValue(sel, "", chromedp.BySearch),
		chromedp.SendKeys(sel, text, chromedp.BySearch),
	)
}

// Press sends key to sel, or to the focused element when sel is empty
func (b *ChromeBrowser) Press(ctx context.Context, sel, key string) error {
	if sel == "" {
		return b.run(ctx, chromedp.KeyEvent(key))
	}
	return b.run(ctx, chromedp.SendKeys(sel, key, chromedp.BySearch))
}

// WaitForLoad waits until the document body is ready
func (b *ChromeBrowser) WaitForLoad(ctx context.Context) error {
	return b.run(ctx, chromedp.WaitReady("body", chromedp.ByQuery))
}

// WaitForTimeout sleeps for d unless ctx ends first
func (b *ChromeBrowser) WaitForTimeout(ctx context.Context, d time.Duration) error {
	return b.run(ctx, chromedp.Sleep(d))
}

// ScrollToEnd scrolls to the bottom a few times so lazy items render
func (b *ChromeBrowser) ScrollToEnd(ctx context.Context) error {
	var height int
	actions := make([]chromedp.Action, 0, scrollPasses*2)
	for i := 0; i < scrollPasses; i++ {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight); document.body.scrollHeight`, &height),
			chromedp.Sleep(scrollPause),
		)
	}
	return b.run(ctx, actions...)
}

// SubscribeNewSurface reports the URL of every new page target once its
// body is ready. Pages still loading when unsubscribed are dropped.
func (b *ChromeBrowser) SubscribeNewSurface(ctx context.Context) (<-chan string, func(), error) {
	if !b.IsConnected() {
		return nil, nil, errBrowserClosed
	}

	out := make(chan string, surfaceBuffer)
	subCtx, cancel := context.WithCancel(b.ctx)
	var seen sync.Map

	chromedp.ListenBrowser(subCtx, func(ev interface{}) {
		created, ok := ev.(*target.EventTargetCreated)
		if !ok || created.TargetInfo.Type != "page" {
			return
		}
		id := created.TargetInfo.TargetID
		if id == b.targetID {
			return
		}
		if _, dup := seen.LoadOrStore(id, struct{}{}); dup {
			return
		}
		go b.awaitSurface(subCtx, id, out)
	})

	return out, cancel, nil
}

func (b *ChromeBrowser) awaitSurface(ctx context.Context, id target.ID, out chan<- string) {
	// attached to the browser rather than ctx so a captured page stays open
	// until Close
	tabCtx, tabCancel := chromedp.NewContext(b.ctx, chromedp.WithTargetID(id))
	waitCtx, cancel := context.WithTimeout(tabCtx, surfaceLoadTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var url string
	if err := chromedp.Run(waitCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&url),
	); err != nil {
		tabCancel()
		b.logger.Debug("New page never finished loading", "target", id, "error", err)
		return
	}
	if url == "" || url == "about:blank" {
		tabCancel()
		return
	}
	b.trackSurface(tabCancel)

	select {
	case out <- url:
	case <-ctx.Done():
	}
}

func (b *ChromeBrowser) trackSurface(cancel context.CancelFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surfaces = append(b.surfaces, cancel)
}

func (b *ChromeBrowser) releaseSurfaces() {
	b.mu.Lock()
	surfaces := b.surfaces
	b.surfaces = nil
	b.mu.Unlock()

	for _, cancel := range surfaces {
		cancel()
	}
}

// CurrentURL returns the URL of the tab
func (b *ChromeBrowser) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := b.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// HTML returns the serialized document of the tab
func (b *ChromeBrowser) HTML(ctx context.Context) (string, error) {
	var html string
	if err := b.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// SectionText returns the text of the first element matching selector whose
// text contains marker
func (b *ChromeBrowser) SectionText(ctx context.Context, selector, marker string) (string, error) {
	script := fmt.Sprintf(`(() => {
  for (const el of document.querySelectorAll(%q)) {
    if (el.textContent.includes(%q)) return el.textContent;
  }
  return "";
})()`, selector, marker)

	var text string
	if err := b.run(ctx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.Evaluate(script, &text),
	); err != nil {
		return "", err
	}
	return text, nil
}

// IsConnected reports whether the tab is still usable
func (b *ChromeBrowser) IsConnected() bool {
	select {
	case <-b.gone:
		return false
	default:
		return true
	}
}

// Disconnected is closed once the tab is lost
func (b *ChromeBrowser) Disconnected() <-chan struct{} {
	return b.gone
}

// Close shuts Chrome down
func (b *ChromeBrowser) Close() error {
	b.closeOnce.Do(func() {
		b.releaseSurfaces()
		b.cancel()
		b.allocCancel()
		b.markGone()
	})
	return nil
}
