package match

import (
	"regexp"
	"time"
)

// The settlement and authorization files encode calendar days four
// different ways. Every decoder below returns the day at midnight UTC and
// false when the raw value does not fit its expected digit pattern; an
// undecodable date excludes a candidate from matching, it never fails the
// pass.

var (
	reDigits78 = regexp.MustCompile(`^[0-9]{7,8}$`)
	reDigits56 = regexp.MustCompile(`^[0-9]{5,6}$`)
	reSlashDay = regexp.MustCompile(`^([0-9]{1,2})/([0-9]{1,2})/([0-9]{2})$`)
)

// century resolves a two-digit year the way the source store did:
// 00-49 land in 2000-2049, 50-99 in 1950-1999.
func century(rr int) int {
	if rr < 50 {
		return 2000 + rr
	}
	return 1900 + rr
}

func civil(day, month, year int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflow such as 31/04.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func pad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func digits2(s string, i int) int {
	return int(s[i]-'0')*10 + int(s[i+1]-'0')
}

// DayDDMMYYYY decodes an 8-digit DDMMYYYY value, left-padding 7-digit
// values whose leading day zero was dropped by numeric storage.
func DayDDMMYYYY(raw string) (time.Time, bool) {
	if !reDigits78.MatchString(raw) {
		return time.Time{}, false
	}
	s := pad(raw, 8)
	year := digits2(s, 4)*100 + digits2(s, 6)
	return civil(digits2(s, 0), digits2(s, 2), year)
}

// DayRRMMDD decodes a 6-digit two-digit-year value in year-month-day
// order, left-padding 5-digit values.
func DayRRMMDD(raw string) (time.Time, bool) {
	if !reDigits56.MatchString(raw) {
		return time.Time{}, false
	}
	s := pad(raw, 6)
	return civil(digits2(s, 4), digits2(s, 2), century(digits2(s, 0)))
}

// DayDDMMRR decodes a 6-digit two-digit-year value in day-month-year
// order, as used by the debit settlement sale date.
func DayDDMMRR(raw string) (time.Time, bool) {
	if !reDigits56.MatchString(raw) {
		return time.Time{}, false
	}
	s := pad(raw, 6)
	return civil(digits2(s, 0), digits2(s, 2), century(digits2(s, 4)))
}

// DaySlashDDMMRR decodes a slash-delimited DD/MM/RR value, as used by the
// debit settlement payment date.
func DaySlashDDMMRR(raw string) (time.Time, bool) {
	m := reSlashDay.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	day := atoi2(m[1])
	month := atoi2(m[2])
	return civil(day, month, century(atoi2(m[3])))
}

func atoi2(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
