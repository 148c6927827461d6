package market

import (
	"time"
	_ "time/tzdata"

	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

// DateLayout is the layout of every date string handled by the backtester.
const DateLayout = "2006-01-02"

const exchangeTimezone = "America/New_York"

// Location returns the exchange timezone.
func Location() (*time.Location, error) {
	loc, err := time.LoadLocation(exchangeTimezone)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to load exchange timezone", err)
	}

	return loc, nil
}

// ParseDate parses a YYYY-MM-DD date at midnight exchange time.
func ParseDate(date string) (time.Time, error) {
	loc, err := Location()
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrCodeInvalidDate, err, "invalid date %q", date)
	}

	return t, nil
}

// RegularSession returns the first and last second of the regular session
// (09:30:00 to 15:59:59 exchange time) on the given date.
func RegularSession(date string) (time.Time, time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 9, 30, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), 15, 59, 59, 0, day.Location())

	return start, end, nil
}
