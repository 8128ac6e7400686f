package match

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/acquirex/reconcile/pkg/domain"
)

// Fixed business constants of the acquiring contract. These are terms of
// the contract, not configuration.
const (
	creditCommissionRate = 0.0090
	debitCommissionRate  = 0.0058
	commissionVATRate    = 0.19

	// principalSentinel in the principal-commerce column means "no
	// principal": bill the commerce number on the line itself.
	principalSentinel = 99999999
)

// internalMerchants never appear in any outward listing; they are the
// acquirer's own test and collection codes.
var internalMerchants = map[string]struct{}{
	"28208820": {},
	"48211418": {},
	"41246590": {},
	"41246593": {},
	"41246594": {},
}

// IsInternalMerchant reports whether a commerce code is on the fixed
// internal denylist.
func IsInternalMerchant(code string) bool {
	_, ok := internalMerchants[strings.TrimSpace(code)]
	return ok
}

// Profile is the typed, per-family variant of what the legacy system
// expressed as SQL CASE fragments: coupon canonicalization, date
// codecs, the commission rate, and whether amount correlation is a hard
// requirement of the match predicate.
type Profile interface {
	Family() domain.Family
	CommissionRate() float64
	// AmountRequired reports whether amount equality is part of the
	// predicate itself rather than only the ambiguity tie-break.
	// Debit coupons repeat across unrelated sales far too often to
	// match on coupon and day alone.
	AmountRequired() bool
	// SaleDay decodes the settlement line's sale date.
	SaleDay(raw string) (time.Time, bool)
	// TransactionDay decodes the authorization record's transaction date.
	TransactionDay(raw string) (time.Time, bool)
	// PaymentDay decodes the settlement line's payment date.
	PaymentDay(raw string) (time.Time, bool)
}

type creditProfile struct{}

func (creditProfile) Family() domain.Family                       { return domain.FamilyCredit }
func (creditProfile) CommissionRate() float64                     { return creditCommissionRate }
func (creditProfile) AmountRequired() bool                        { return false }
func (creditProfile) SaleDay(raw string) (time.Time, bool)        { return DayDDMMYYYY(raw) }
func (creditProfile) TransactionDay(raw string) (time.Time, bool) { return DayRRMMDD(raw) }
func (creditProfile) PaymentDay(raw string) (time.Time, bool)     { return DayDDMMYYYY(raw) }

type debitProfile struct{}

func (debitProfile) Family() domain.Family                       { return domain.FamilyDebit }
func (debitProfile) CommissionRate() float64                     { return debitCommissionRate }
func (debitProfile) AmountRequired() bool                        { return true }
func (debitProfile) SaleDay(raw string) (time.Time, bool)        { return DayDDMMRR(raw) }
func (debitProfile) TransactionDay(raw string) (time.Time, bool) { return DayRRMMDD(raw) }
func (debitProfile) PaymentDay(raw string) (time.Time, bool)     { return DaySlashDDMMRR(raw) }

// ProfileFor returns the matching profile of a family.
func ProfileFor(f domain.Family) Profile {
	if f == domain.FamilyCredit {
		return creditProfile{}
	}
	return debitProfile{}
}

// Commission returns the acquirer commission in currency units for a
// settled amount expressed in cents.
func Commission(amountCents int64, f domain.Family) float64 {
	return float64(amountCents) / 100 * ProfileFor(f).CommissionRate()
}

// Gross returns the commission plus VAT in currency units.
func Gross(amountCents int64, f domain.Family) float64 {
	c := Commission(amountCents, f)
	return c + c*commissionVATRate
}

// CommissionCents returns the commission rounded to cents.
func CommissionCents(amountCents int64, f domain.Family) int64 {
	return int64(math.Round(Commission(amountCents, f) * 100))
}

// CommerceCode resolves the billed merchant for a settlement line. The
// credit family bills the principal commerce unless it carries the
// no-principal sentinel; debit always bills the line's own commerce.
func CommerceCode(principal *int64, commerceNumber string, f domain.Family) string {
	if f == domain.FamilyCredit && principal != nil && *principal != principalSentinel {
		return strconv.FormatInt(*principal, 10)
	}
	return strings.TrimSpace(commerceNumber)
}
