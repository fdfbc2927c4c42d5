package calendar

import (
	"errors"
	"time"
)

// MaxTermDays bounds a term so a typo in a year cannot produce an
// unbounded date list.
const MaxTermDays = 3 * 366

var (
	ErrInvalidRange = errors.New("term start is after term end")
	ErrRangeTooLong = errors.New("term is longer than three years")
)

var defaultWeekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// Date truncates t to a UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Parse(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t), nil
}

func Format(t time.Time) string {
	return t.Format("2006-01-02")
}

// Weekdays converts stored meeting days (0 = Sunday) into time.Weekday
// values, dropping anything out of range.
func Weekdays(days []int) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			out = append(out, time.Weekday(d))
		}
	}
	return out
}

// ClassDays lists every date in [start, end] that falls on a meeting
// weekday and is not a holiday. An empty weekday set means Monday-Friday.
func ClassDays(start, end time.Time, weekdays []time.Weekday, holidays []time.Time) ([]time.Time, error) {
	start, end = Date(start), Date(end)
	if start.After(end) {
		return nil, ErrInvalidRange
	}
	if end.Sub(start) > MaxTermDays*24*time.Hour {
		return nil, ErrRangeTooLong
	}

	if len(weekdays) == 0 {
		weekdays = defaultWeekdays
	}
	meets := make(map[time.Weekday]bool, len(weekdays))
	for _, wd := range weekdays {
		meets[wd] = true
	}

	off := make(map[time.Time]bool, len(holidays))
	for _, h := range holidays {
		off[Date(h)] = true
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if meets[d.Weekday()] && !off[d] {
			days = append(days, d)
		}
	}
	return days, nil
}
