package view

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/smartledger/smartledger/internal/transaction"
)

// Timeframe is a preset date range relative to today.
type Timeframe int

const (
	TimeframeAll Timeframe = iota
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeLast90Days
	TimeframeThisYear
	TimeframeCustom
)

var timeframeNames = map[Timeframe]string{
	TimeframeAll:        "All Time",
	TimeframeThisMonth:  "This Month",
	TimeframeLastMonth:  "Last Month",
	TimeframeLast90Days: "Last 90 Days",
	TimeframeThisYear:   "This Year",
	TimeframeCustom:     "Custom Range",
}

func (t Timeframe) String() string {
	if name, ok := timeframeNames[t]; ok {
		return name
	}

	return "Unknown"
}

// Range returns the inclusive day range t covers on now's calendar. ok is
// false for TimeframeAll and TimeframeCustom, which have no fixed range.
func (t Timeframe) Range(now time.Time) (start, end time.Time, ok bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch t {
	case TimeframeThisMonth:
		return monthStart, endOfDay(monthStart.AddDate(0, 1, -1)), true
	case TimeframeLastMonth:
		start = monthStart.AddDate(0, -1, 0)
		return start, endOfDay(monthStart.AddDate(0, 0, -1)), true
	case TimeframeLast90Days:
		return today.AddDate(0, 0, -90), endOfDay(today), true
	case TimeframeThisYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, endOfDay(time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)), true
	}

	return time.Time{}, time.Time{}, false
}

func endOfDay(day time.Time) time.Time {
	return day.Add(24*time.Hour - time.Nanosecond)
}

// timeframeFields backs the timeframe groups of a huh form.
type timeframeFields struct {
	frame Timeframe
	start string
	end   string
}

// groups returns a preset selector followed by a custom range group that is
// only shown when TimeframeCustom is picked.
func (f *timeframeFields) groups() []*huh.Group {
	options := make([]huh.Option[Timeframe], 0, len(timeframeNames))
	for t := TimeframeAll; t <= TimeframeCustom; t++ {
		options = append(options, huh.NewOption(t.String(), t))
	}

	return []*huh.Group{
		huh.NewGroup(
			huh.NewSelect[Timeframe]().
				Title("Timeframe").
				Options(options...).
				Value(&f.frame),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Start date").
				Placeholder("YYYY-MM-DD").
				Value(&f.start).
				Validate(validateDate),
			huh.NewInput().
				Title("End date").
				Placeholder("YYYY-MM-DD").
				Value(&f.end).
				Validate(validateDate),
		).WithHideFunc(func() bool { return f.frame != TimeframeCustom }),
	}
}

// apply narrows filter to the chosen range. TimeframeAll clears the dates.
func (f timeframeFields) apply(filter *transaction.ListFilter, now time.Time) error {
	filter.StartDate, filter.EndDate = nil, nil

	if f.frame == TimeframeAll {
		return nil
	}

	start, end, ok := f.frame.Range(now)
	if !ok {
		var err error

		if start, err = time.Parse(time.DateOnly, strings.TrimSpace(f.start)); err != nil {
			return errors.New("start date must be formatted YYYY-MM-DD")
		}

		if end, err = time.Parse(time.DateOnly, strings.TrimSpace(f.end)); err != nil {
			return errors.New("end date must be formatted YYYY-MM-DD")
		}

		if end.Before(start) {
			return errors.New("end date is before start date")
		}

		end = endOfDay(end)
	}

	filter.StartDate = &start
	filter.EndDate = &end

	return nil
}
