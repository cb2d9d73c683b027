package browser

import (
	"context"
	"fmt"
	"time"

	"flightlink-service/internal/domain/driver"
	"flightlink-service/internal/domain/entity"
	"flightlink-service/pkg/logger"

	"github.com/chromedp/chromedp/kb"
)

// KayakForm drives the flight search form through a driver.Browser
type KayakForm struct {
	browser  driver.Browser
	bindings *Bindings
	logger   logger.Logger
}

// NewKayakForm creates a new search form bound to browser
func NewKayakForm(browser driver.Browser, bindings *Bindings, logger logger.Logger) *KayakForm {
	return &KayakForm{
		browser:  browser,
		bindings: bindings,
		logger:   logger,
	}
}

// Bootstrap opens the start page and switches it to English / United States.
// The language switch is best-effort: the page may already be in English.
func (f *KayakForm) Bootstrap(ctx context.Context) error {
	if err := f.browser.Navigate(ctx, f.bindings.StartURL); err != nil {
		return fmt.Errorf("%w: open start page: %v", entity.ErrUIDriver, err)
	}

	lang := f.bindings.Language
	if lang.Menu != "" {
		err := f.optional(ctx,
			func(ctx context.Context) error { return f.browser.Click(ctx, lang.Menu) },
			func(ctx context.Context) error { return f.browser.Click(ctx, lang.Option) },
			func(ctx context.Context) error { return f.browser.Fill(ctx, lang.RegionInput, lang.Region) },
			func(ctx context.Context) error { return f.browser.Press(ctx, lang.RegionInput, kb.Enter) },
		)
		if err != nil {
			f.logger.Warn("Language switch skipped", "error", f.wrap("language", err))
		}
	}

	return f.sequence(ctx,
		f.browser.WaitForLoad,
		f.settle,
	)
}

// SelectOrigin clears the preset origin and types code
func (f *KayakForm) SelectOrigin(ctx context.Context, code string) error {
	clearOrigin := func(ctx context.Context) error { return f.browser.Click(ctx, f.bindings.Origin.Clear) }
	if err := f.optional(ctx, clearOrigin); err != nil {
		f.logger.Debug("No preset origin to clear", "error", err)
	}
	return f.typeAirport(ctx, f.bindings.Origin.Input, code)
}

// SelectDestination types code into the destination input
func (f *KayakForm) SelectDestination(ctx context.Context, code string) error {
	return f.typeAirport(ctx, f.bindings.Destination.Input, code)
}

func (f *KayakForm) typeAirport(ctx context.Context, input, code string) error {
	return f.wrap("airport "+code, f.sequence(ctx,
		func(ctx context.Context) error { return f.browser.Fill(ctx, input, code) },
		f.browser.WaitForLoad,
		f.settle,
		func(ctx context.Context) error { return f.browser.Press(ctx, input, kb.Enter) },
		f.pause,
	))
}

// SelectTravelers opens the traveler panel and steps each category from its
// preset value to counts. Increments run before decrements so the panel never
// drops to zero primary travelers.
func (f *KayakForm) SelectTravelers(ctx context.Context, counts entity.TravelerCounts) error {
	t := f.bindings.Travelers
	if err := f.browser.Click(ctx, t.Open); err != nil {
		return f.wrap("open travelers", err)
	}

	for i, want := range counts {
		for n := want - t.Preset[i]; n > 0; n-- {
			if err := f.browser.Click(ctx, t.Increment[i]); err != nil {
				return f.wrap(fmt.Sprintf("increment traveler group %d", i), err)
			}
		}
	}
	for i, want := range counts {
		for n := t.Preset[i] - want; n > 0; n-- {
			if err := f.browser.Click(ctx, t.Decrement[i]); err != nil {
				return f.wrap(fmt.Sprintf("decrement traveler group %d", i), err)
			}
		}
	}
	return nil
}

// SelectCabin picks the cabin radio; economy is the form default
func (f *KayakForm) SelectCabin(ctx context.Context, class entity.CabinClass) error {
	sel := f.bindings.CabinSelector(class)
	if sel == "" {
		return nil
	}
	return f.wrap("cabin "+class.String(), f.browser.Click(ctx, sel))
}

// OpenCalendar opens the departure date picker
func (f *KayakForm) OpenCalendar(ctx context.Context) error {
	return f.wrap("open calendar", f.sequence(ctx,
		f.browser.WaitForLoad,
		func(ctx context.Context) error { return f.browser.Click(ctx, f.bindings.Calendar.Open) },
	))
}

// NextMonth pages the calendar forward
func (f *KayakForm) NextMonth(ctx context.Context) error {
	return f.wrap("next month", f.browser.Click(ctx, f.bindings.Calendar.NextMonth))
}

// PickDay clicks the calendar cell of day
func (f *KayakForm) PickDay(ctx context.Context, day time.Time) error {
	return f.wrap("pick "+day.Format(entity.DateLayout), f.browser.Click(ctx, f.bindings.DaySelector(day)))
}

// SubmitSearch clicks the search button
func (f *KayakForm) SubmitSearch(ctx context.Context) error {
	return f.wrap("submit search", f.browser.Click(ctx, f.bindings.Search))
}

func (f *KayakForm) sequence(ctx context.Context, steps ...func(context.Context) error) error {
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// optional runs steps whose elements may not exist, giving up after the
// optional timeout instead of waiting for ctx
func (f *KayakForm) optional(ctx context.Context, steps ...func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, f.bindings.OptionalTimeout)
	defer cancel()
	return f.sequence(ctx, steps...)
}

func (f *KayakForm) settle(ctx context.Context) error {
	return f.browser.WaitForTimeout(ctx, f.bindings.SettleDelay)
}

func (f *KayakForm) pause(ctx context.Context) error {
	return f.browser.WaitForTimeout(ctx, f.bindings.StepDelay)
}

func (f *KayakForm) wrap(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", entity.ErrUIDriver, step, err)
}
