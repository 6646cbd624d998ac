package application

import (
	"fmt"
	"time"
)

// resolveDate turns a DateInput into a calendar date in today's location.
// Without a year, a day that has already passed this year means next year.
// An explicit year in the past is rejected.
func resolveDate(in DateInput, today time.Time) (time.Time, error) {
	vErr := &ValidationError{}
	loc := today.Location()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	year := in.Year
	if year == 0 {
		year = today.Year()
		if date, ok := calendarDate(year, in.Month, in.Day, loc); ok && date.Before(today) {
			year++
		}
	}

	date, ok := calendarDate(year, in.Month, in.Day, loc)
	if !ok {
		vErr.add("date", fmt.Sprintf("%02d-%02d-%04d is not a calendar date", in.Day, in.Month, year))
		return time.Time{}, vErr
	}
	if date.Before(today) {
		vErr.add("date", "date is in the past")
		return time.Time{}, vErr
	}
	return date, nil
}

func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// resolveTime formats a TimeInput as HH:MM.
func resolveTime(in TimeInput) (string, error) {
	if in.Hour < 0 || in.Hour > 23 || in.Minute < 0 || in.Minute > 59 {
		vErr := &ValidationError{}
		vErr.add("time", fmt.Sprintf("%d:%02d is not a time of day", in.Hour, in.Minute))
		return "", vErr
	}
	return fmt.Sprintf("%02d:%02d", in.Hour, in.Minute), nil
}
