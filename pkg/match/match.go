package match

import (
	"fmt"
	"time"
)

// Side reduces one record, settlement line or authorization, to the keys
// the match predicate reads. Day carries the already-decoded calendar day;
// DayOK is false when the raw date did not decode, which excludes the
// record from matching without failing the pass.
type Side struct {
	UniqueNumber      string
	AuthorizationCode string
	Day               time.Time
	DayOK             bool
	Amount            *int64
}

// Candidate is one authorization record offered to the matcher.
type Candidate struct {
	ID int64
	Side
}

// AmbiguousMatchError reports that more than one candidate survived every
// predicate the family allows. The caller decides what an ambiguous pair
// means; the matcher never guesses.
type AmbiguousMatchError struct {
	Coupon string
	Count  int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("coupon %q matches %d transactions", e.Coupon, e.Count)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func sameAmount(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

// couponMatches applies the fallback-key predicate. A numeric target
// coupon only ever pairs with a candidate's numeric unique number; a
// non-numeric one only with the candidate's authorization code. The two
// branches never cross.
func couponMatches(coupon string, numeric bool, c Side) bool {
	if numeric {
		return NumericCoupon(c.UniqueNumber) && StripZeros(c.UniqueNumber) == coupon
	}
	return CanonicalAuth(c.AuthorizationCode) == coupon
}

// Match pairs one settlement side against its authorization candidates
// under the family profile. It returns nil with no error when nothing
// matches, and an AmbiguousMatchError when the predicate cannot narrow
// the field to one candidate.
func Match(target Side, candidates []Candidate, p Profile) (*Candidate, error) {
	if !target.DayOK {
		return nil, nil
	}
	coupon, numeric := CanonicalCoupon(target.UniqueNumber, target.AuthorizationCode)
	if coupon == "" {
		return nil, nil
	}

	var hits []Candidate
	for _, c := range candidates {
		if !c.DayOK || !sameDay(target.Day, c.Day) {
			continue
		}
		if !couponMatches(coupon, numeric, c.Side) {
			continue
		}
		if p.AmountRequired() && !sameAmount(target.Amount, c.Amount) {
			continue
		}
		hits = append(hits, c)
	}

	switch len(hits) {
	case 0:
		return nil, nil
	case 1:
		return &hits[0], nil
	}

	// Several coupons collided on the same day. Amount equality breaks
	// the tie where it was not already part of the predicate.
	if !p.AmountRequired() {
		var narrowed []Candidate
		for _, c := range hits {
			if sameAmount(target.Amount, c.Amount) {
				narrowed = append(narrowed, c)
			}
		}
		if len(narrowed) == 1 {
			return &narrowed[0], nil
		}
		if len(narrowed) > 1 {
			hits = narrowed
		}
	}
	return nil, &AmbiguousMatchError{Coupon: coupon, Count: len(hits)}
}
