package usecase

import (
	"context"
	"fmt"
	"time"

	"flightlink-service/internal/domain/driver"
	"flightlink-service/internal/domain/entity"
)

// StepKind is a single calendar widget action
type StepKind int

const (
	// AdvanceMonth pages the calendar forward by one month
	AdvanceMonth StepKind = iota
	// PickDay selects a visible day
	PickDay
)

// CalendarStep is one action of a calendar plan
type CalendarStep struct {
	Kind StepKind
	Day  time.Time
}

// CalendarNavigator plans the month paging needed to reach travel dates
// in a calendar widget that opens on the current month
type CalendarNavigator struct{}

// NewCalendarNavigator creates a new calendar navigator
func NewCalendarNavigator() *CalendarNavigator {
	return &CalendarNavigator{}
}

// MonthDelta returns how many month pages separate from and to
func MonthDelta(from, to time.Time) int {
	return int(to.Month()-from.Month()) + 12*(to.Year()-from.Year())
}

// Plan returns the steps that pick depart then ret, starting from the
// month of today
func (c *CalendarNavigator) Plan(today, depart, ret time.Time) ([]CalendarStep, error) {
	toDepart := MonthDelta(today, depart)
	if toDepart < 0 {
		return nil, fmt.Errorf("%w: %s before %s", entity.ErrCalendarOrder, depart.Format(entity.DateLayout), today.Format(entity.DateLayout))
	}
	toReturn := MonthDelta(depart, ret)
	if toReturn < 0 {
		return nil, fmt.Errorf("%w: %s before %s", entity.ErrCalendarOrder, ret.Format(entity.DateLayout), depart.Format(entity.DateLayout))
	}

	steps := make([]CalendarStep, 0, toDepart+toReturn+2)
	for i := 0; i < toDepart; i++ {
		steps = append(steps, CalendarStep{Kind: AdvanceMonth})
	}
	steps = append(steps, CalendarStep{Kind: PickDay, Day: depart})
	for i := 0; i < toReturn; i++ {
		steps = append(steps, CalendarStep{Kind: AdvanceMonth})
	}
	steps = append(steps, CalendarStep{Kind: PickDay, Day: ret})
	return steps, nil
}

// Apply opens the calendar on form and executes steps in order
func (c *CalendarNavigator) Apply(ctx context.Context, form driver.SearchForm, steps []CalendarStep) error {
	if err := form.OpenCalendar(ctx); err != nil {
		return err
	}
	for _, step := range steps {
		var err error
		switch step.Kind {
		case AdvanceMonth:
			err = form.NextMonth(ctx)
		case PickDay:
			err = form.PickDay(ctx, step.Day)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
