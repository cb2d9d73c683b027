package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"flightlink-service/internal/domain/entity"

	"github.com/stretchr/testify/require"
)

func TestMonthDelta(t *testing.T) {
	cases := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{name: "same month", from: day(2024, time.January, 3), to: day(2024, time.January, 30), want: 0},
		{name: "two months", from: day(2024, time.January, 31), to: day(2024, time.March, 1), want: 2},
		{name: "year boundary", from: day(2024, time.December, 31), to: day(2025, time.January, 1), want: 1},
		{name: "across years", from: day(2024, time.November, 10), to: day(2025, time.October, 10), want: 11},
		{name: "backwards", from: day(2025, time.February, 1), to: day(2025, time.January, 1), want: -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, MonthDelta(c.from, c.to))
		})
	}
}

func TestCalendarPlan(t *testing.T) {
	nav := NewCalendarNavigator()
	depart := day(2025, time.May, 20)
	ret := day(2025, time.July, 2)

	steps, err := nav.Plan(testToday, depart, ret)
	require.NoError(t, err)
	require.Equal(t, []CalendarStep{
		{Kind: AdvanceMonth},
		{Kind: AdvanceMonth},
		{Kind: PickDay, Day: depart},
		{Kind: AdvanceMonth},
		{Kind: AdvanceMonth},
		{Kind: PickDay, Day: ret},
	}, steps)
}

func TestCalendarPlanSameMonth(t *testing.T) {
	nav := NewCalendarNavigator()
	depart := day(2025, time.March, 16)
	ret := day(2025, time.March, 17)

	steps, err := nav.Plan(testToday, depart, ret)
	require.NoError(t, err)
	require.Equal(t, []CalendarStep{
		{Kind: PickDay, Day: depart},
		{Kind: PickDay, Day: ret},
	}, steps)
}

func TestCalendarPlanRejectsPastMonth(t *testing.T) {
	nav := NewCalendarNavigator()

	_, err := nav.Plan(testToday, day(2025, time.January, 20), day(2025, time.April, 1))
	require.True(t, errors.Is(err, entity.ErrCalendarOrder))

	_, err = nav.Plan(testToday, day(2025, time.June, 20), day(2025, time.May, 1))
	require.True(t, errors.Is(err, entity.ErrCalendarOrder))
}

func TestCalendarApply(t *testing.T) {
	nav := NewCalendarNavigator()
	form := newFakeForm(newFakeBrowser("https://example.test/"))

	steps, err := nav.Plan(testToday, day(2025, time.April, 2), day(2025, time.April, 9))
	require.NoError(t, err)
	require.NoError(t, nav.Apply(context.Background(), form, steps))
	require.Equal(t, []string{"calendar", "next", "pick:02-04-2025", "pick:09-04-2025"}, form.calls)
}
