package util

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// JalaliToGregorian converts a Solar Hijri calendar date to a UTC time at
// midnight.
func JalaliToGregorian(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("jalali month out of range: %d", month)
	}
	maxDay := 31
	if month > 6 {
		maxDay = 30
	}
	if day < 1 || day > maxDay {
		return time.Time{}, fmt.Errorf("jalali day out of range: %d/%d", month, day)
	}

	t := jalaliToGregorian(year, month, day)
	// Esfand 30 exists in leap years only; otherwise it rolls into Farvardin 1
	if month == 12 && day == 30 && t.Equal(jalaliToGregorian(year+1, 1, 1)) {
		return time.Time{}, fmt.Errorf("jalali day out of range: %d is not a leap year", year)
	}
	return t, nil
}

func jalaliToGregorian(year, month, day int) time.Time {
	jy := year + 1595
	days := -355668 + 365*jy + (jy/33)*8 + ((jy%33)+3)/4 + day
	if month < 7 {
		days += (month - 1) * 31
	} else {
		days += (month-7)*30 + 186
	}

	gy := 400 * (days / 146097)
	days %= 146097
	if days > 36524 {
		days--
		gy += 100 * (days / 36524)
		days %= 36524
		if days >= 365 {
			days++
		}
	}
	gy += 4 * (days / 1461)
	days %= 1461
	if days > 365 {
		gy += (days - 1) / 365
		days = (days - 1) % 365
	}

	// time.Date normalizes the day-of-year into month and day
	return time.Date(gy, time.January, days+1, 0, 0, 0, 0, time.UTC)
}

var jalaliDate = regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})`)

// FindJalaliDate extracts the first YYYY/MM/DD date embedded in text and
// converts it. Digits must already be ASCII.
func FindJalaliDate(text string) (time.Time, error) {
	m := jalaliDate.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, fmt.Errorf("no jalali date in %q", text)
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	return JalaliToGregorian(y, mo, d)
}
