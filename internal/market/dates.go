package market

import (
	"time"

	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

// DefaultHolidays are the full-day NYSE closures of 2022 and 2023.
var DefaultHolidays = []string{
	"2022-01-17", "2022-02-21", "2022-04-15", "2022-05-30", "2022-06-20",
	"2022-07-04", "2022-09-05", "2022-11-24", "2022-12-26",
	"2023-01-02", "2023-01-16", "2023-02-20", "2023-04-07", "2023-05-29",
	"2023-06-19", "2023-07-04", "2023-09-04", "2023-11-23", "2023-12-25",
}

// TradingDates returns every weekday between start and end inclusive that is not a holiday.
func TradingDates(start string, end string, holidays []string) ([]string, error) {
	from, err := ParseDate(start)
	if err != nil {
		return nil, err
	}

	to, err := ParseDate(end)
	if err != nil {
		return nil, err
	}

	if from.After(to) {
		return nil, errors.Newf(errors.ErrCodeInvalidDate, "start date %s is after end date %s", start, end)
	}

	skip := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		skip[h] = struct{}{}
	}

	var dates []string

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		date := day.Format(DateLayout)
		if _, ok := skip[date]; ok {
			continue
		}

		dates = append(dates, date)
	}

	return dates, nil
}
