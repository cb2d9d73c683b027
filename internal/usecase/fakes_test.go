package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"flightlink-service/internal/domain/driver"
	"flightlink-service/internal/domain/entity"
)

type fakeBrowser struct {
	mu sync.Mutex

	current     string
	afterSubmit string
	surfaces    []string
	pages       map[string]string
	navigated   []string
	failNav     map[string]bool

	subscribeErr error
	loseOnSubmit bool
	closed       bool
	gone         chan struct{}
	unsubscribed bool
}

func newFakeBrowser(current string) *fakeBrowser {
	return &fakeBrowser{
		current: current,
		pages:   map[string]string{},
		failNav: map[string]bool{},
		gone:    make(chan struct{}),
	}
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.navigated = append(b.navigated, url)
	if b.failNav[url] {
		return errors.New("navigation timeout")
	}
	b.current = url
	return nil
}

func (b *fakeBrowser) Click(ctx context.Context, target string) error            { return nil }
func (b *fakeBrowser) Fill(ctx context.Context, target, text string) error       { return nil }
func (b *fakeBrowser) Press(ctx context.Context, target, key string) error       { return nil }
func (b *fakeBrowser) WaitForLoad(ctx context.Context) error                     { return nil }
func (b *fakeBrowser) WaitForTimeout(ctx context.Context, d time.Duration) error { return nil }
func (b *fakeBrowser) ScrollToEnd(ctx context.Context) error                     { return nil }

func (b *fakeBrowser) SubscribeNewSurface(ctx context.Context) (<-chan string, func(), error) {
	if b.subscribeErr != nil {
		return nil, nil, b.subscribeErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan string, len(b.surfaces))
	for _, s := range b.surfaces {
		ch <- s
	}
	return ch, func() { b.unsubscribed = true }, nil
}

func (b *fakeBrowser) CurrentURL(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.connected() {
		return "", errors.New("target closed")
	}
	return b.current, nil
}

func (b *fakeBrowser) HTML(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pages[b.current], nil
}

func (b *fakeBrowser) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected()
}

func (b *fakeBrowser) connected() bool {
	select {
	case <-b.gone:
		return false
	default:
		return true
	}
}

func (b *fakeBrowser) Disconnected() <-chan struct{} { return b.gone }

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
	}
	return nil
}

func (b *fakeBrowser) disconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.connected() {
		close(b.gone)
	}
}

type fakeForm struct {
	browser *fakeBrowser
	calls   []string
	failOn  map[string]error
	// steps that never find their element and wait until ctx ends
	hangOn map[string]bool
}

func newFakeForm(browser *fakeBrowser) *fakeForm {
	return &fakeForm{browser: browser, failOn: map[string]error{}, hangOn: map[string]bool{}}
}

func (f *fakeForm) record(name string) error {
	f.calls = append(f.calls, name)
	return f.failOn[name]
}

func (f *fakeForm) recordCtx(ctx context.Context, name string) error {
	if err := f.record(name); err != nil {
		return err
	}
	if f.hangOn[name] {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (f *fakeForm) Bootstrap(ctx context.Context) error { return f.recordCtx(ctx, "bootstrap") }
func (f *fakeForm) SelectOrigin(ctx context.Context, code string) error {
	return f.recordCtx(ctx, "origin:"+code)
}
func (f *fakeForm) SelectDestination(ctx context.Context, code string) error {
	return f.record("destination:" + code)
}
func (f *fakeForm) SelectTravelers(ctx context.Context, counts entity.TravelerCounts) error {
	return f.record("travelers")
}
func (f *fakeForm) SelectCabin(ctx context.Context, class entity.CabinClass) error {
	return f.record("cabin:" + class.String())
}
func (f *fakeForm) OpenCalendar(ctx context.Context) error { return f.record("calendar") }
func (f *fakeForm) NextMonth(ctx context.Context) error    { return f.record("next") }
func (f *fakeForm) PickDay(ctx context.Context, day time.Time) error {
	return f.record("pick:" + day.Format(entity.DateLayout))
}

func (f *fakeForm) SubmitSearch(ctx context.Context) error {
	if err := f.record("submit"); err != nil {
		return err
	}
	if f.browser.loseOnSubmit {
		f.browser.disconnect()
		return nil
	}
	if f.browser.afterSubmit != "" {
		f.browser.mu.Lock()
		f.browser.current = f.browser.afterSubmit
		f.browser.mu.Unlock()
	}
	return nil
}

// fakeSessions hands out the prepared browsers in order
type fakeSessions struct {
	browsers []*fakeBrowser
	forms    []*fakeForm
	opened   int
	openErr  error
}

func (s *fakeSessions) add(b *fakeBrowser) *fakeForm {
	f := newFakeForm(b)
	s.browsers = append(s.browsers, b)
	s.forms = append(s.forms, f)
	return f
}

func (s *fakeSessions) Open(ctx context.Context) (*driver.Session, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	if s.opened >= len(s.browsers) {
		return nil, errors.New("no more sessions")
	}
	b, f := s.browsers[s.opened], s.forms[s.opened]
	s.opened++
	return &driver.Session{Browser: b, Form: f}, nil
}

type memLinkRepo struct {
	links []*entity.CapturedLink
}

func (r *memLinkRepo) Append(ctx context.Context, link *entity.CapturedLink) error {
	link.ID = int64(len(r.links))
	r.links = append(r.links, link)
	return nil
}

func (r *memLinkRepo) List(ctx context.Context) ([]*entity.CapturedLink, error) {
	return r.links, nil
}

func (r *memLinkRepo) Close() error { return nil }

type memListingRepo struct {
	records []*entity.FlightListingRecord
}

func (r *memListingRepo) Append(ctx context.Context, records []*entity.FlightListingRecord) error {
	r.records = append(r.records, records...)
	return nil
}

func (r *memListingRepo) Close() error { return nil }

type staticAirports struct {
	codes []string
	err   error
}

func (a staticAirports) LoadCodes(ctx context.Context) (entity.AirportSet, error) {
	if a.err != nil {
		return nil, a.err
	}
	return entity.NewAirportSet(a.codes), nil
}
