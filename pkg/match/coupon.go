package match

import (
	"regexp"
	"strings"
)

// numericNonZero accepts strings that are all digits and not entirely
// zero. Values failing this test fall back to the authorization code.
var numericNonZero = regexp.MustCompile(`^[0-9]*[1-9][0-9]*$`)

// NumericCoupon reports whether the trimmed value qualifies for the
// unique-number branch of the match predicate.
func NumericCoupon(v string) bool {
	return numericNonZero.MatchString(strings.TrimSpace(v))
}

// StripZeros removes leading zeros from a numeric coupon. "00042"
// becomes "42"; an all-zero value is out of scope because NumericCoupon
// already rejected it.
func StripZeros(v string) string {
	return strings.TrimLeft(strings.TrimSpace(v), "0")
}

// CanonicalAuth normalizes an authorization code for keying. Codes are
// compared verbatim after trimming, leading zeros included.
func CanonicalAuth(authorizationCode string) string {
	return strings.TrimSpace(authorizationCode)
}

// CanonicalCoupon derives the single coupon value used everywhere a
// record is keyed: the zero-stripped unique number when it is numeric and
// not all zeros, otherwise the trimmed authorization code unchanged. The
// boolean reports which branch applied.
func CanonicalCoupon(uniqueNumber, authorizationCode string) (string, bool) {
	if NumericCoupon(uniqueNumber) {
		return StripZeros(uniqueNumber), true
	}
	return CanonicalAuth(authorizationCode), false
}
