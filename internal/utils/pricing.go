package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for booking dates
const DateLayout = "2006-01-02"

const msPerDay = int64(24 * time.Hour / time.Millisecond)

var ErrInvalidAmount = errors.New("amount is not a finite non-negative number")

// Date represents a calendar date
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate converts a yyyy-mm-dd formatted string into a Date struct
func ParseDate(dateStr string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(dateStr), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("invalid year: %v", err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Date{}, fmt.Errorf("invalid month: %v", err)
	}

	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("invalid day: %v", err)
	}

	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("month must be between 1 and 12")
	}

	if day < 1 || day > DaysInMonth(year, month) {
		return Date{}, fmt.Errorf("day must be between 1 and %d", DaysInMonth(year, month))
	}

	return Date{Year: year, Month: month, Day: day}, nil
}

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year, month int) int {
	if month == 2 {
		// Check for leap year
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}

	// Months with 30 days: April, June, September, November
	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}

	return 31
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// RentalDays counts the days of a booking, inclusive of both boundary dates.
// A same-day booking is one day.
func RentalDays(start, end Date) int {
	ms := end.Time().Sub(start.Time()).Milliseconds()
	return int(math.Ceil(float64(ms)/float64(msPerDay))) + 1
}

// TotalPrice multiplies the daily price by the day count and rounds to cents
func TotalPrice(pricePerDay float64, days int) (float64, error) {
	total := RoundCents(pricePerDay * float64(days))
	if math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
		return 0, ErrInvalidAmount
	}
	return total, nil
}

// RoundCents rounds v to two decimal places
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount renders an amount with two decimals
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
