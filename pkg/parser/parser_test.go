package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acquirex/reconcile/pkg/domain"
)

// line builds a fixed-width fixture of the given width with the fields
// placed at their column offsets.
func line(width int, fields map[int]string) string {
	buf := []byte(strings.Repeat(" ", width))
	for start, v := range fields {
		copy(buf[start:], v)
	}
	return string(buf)
}

func TestParseCreditTransaction(t *testing.T) {
	l := line(278, map[int]string{
		0:   "DR",
		20:  "250428", // transaction date RRMMDD
		83:  "0000000030205",
		106: "05",
		111: "A1B2C3",
		135: "REG-0042",
		162: "250428",
		216: "00000000000000000000000042",
	})

	rec, err := ParseCreditTransaction(l)
	require.NoError(t, err)
	assert.Equal(t, "DR", rec.RecordType)
	assert.Equal(t, "250428", rec.TransactionDate)
	require.NotNil(t, rec.Amount)
	assert.EqualValues(t, 30205, *rec.Amount)
	require.NotNil(t, rec.InstallmentCount)
	assert.EqualValues(t, 5, *rec.InstallmentCount)
	assert.Equal(t, "A1B2C3", rec.ApprovalCode)
	assert.Equal(t, "REG-0042", rec.RegisterID)
	assert.Equal(t, "00000000000000000000000042", rec.UniqueNumber)
	assert.Equal(t, domain.FileCreditTransaction, rec.FileType())
}

func TestParseDebitTransaction(t *testing.T) {
	l := line(222, map[int]string{
		0:   "DR",
		8:   "250502",
		71:  "0000000002500",
		109: "ZX99",
		195: "00000000000000000000007001",
		221: "S",
	})

	rec, err := ParseDebitTransaction(l)
	require.NoError(t, err)
	assert.Equal(t, "250502", rec.TransactionDate)
	require.NotNil(t, rec.Amount)
	assert.EqualValues(t, 2500, *rec.Amount)
	assert.Equal(t, "ZX99", rec.ApprovalCode)
	assert.Equal(t, "00000000000000000000007001", rec.UniqueNumber)
	assert.Equal(t, "S", rec.Prepaid)
}

func TestParseCreditLiquidation(t *testing.T) {
	l := line(229, map[int]string{
		0:   "12345678",
		16:  "28042025",
		53:  "00000030205",
		67:  "0000",
		71:  "99999999",
		79:  "05052025",
		87:  "00000000000000000000000042",
		113: "A1B2C3",
		119: "01",
		169: "05",
	})

	rec, err := ParseCreditLiquidation(l)
	require.NoError(t, err)
	require.NotNil(t, rec.CommerceNumber)
	assert.EqualValues(t, 12345678, *rec.CommerceNumber)
	assert.Equal(t, "28042025", rec.SaleDate)
	require.NotNil(t, rec.Amount)
	assert.EqualValues(t, 30205, *rec.Amount)
	assert.Equal(t, "0000", rec.Withheld)
	require.NotNil(t, rec.PrincipalCommerce)
	assert.EqualValues(t, 99999999, *rec.PrincipalCommerce)
	assert.Equal(t, "05052025", rec.PaymentDate)
	assert.Equal(t, "A1B2C3", rec.AuthorizationCode)
	require.NotNil(t, rec.Installment)
	assert.EqualValues(t, 1, *rec.Installment)
	require.NotNil(t, rec.TotalInstallments)
	assert.EqualValues(t, 5, *rec.TotalInstallments)
}

func TestParseDebitLiquidation(t *testing.T) {
	l := line(215, map[int]string{
		0:  "87654321",
		14: "020525",
		20: "ZX99",
		45: "0000000002500",
		70: "09/05/25",
		78: "00000000000000000000007001",
	})

	rec, err := ParseDebitLiquidation(l)
	require.NoError(t, err)
	require.NotNil(t, rec.CommerceNumber)
	assert.EqualValues(t, 87654321, *rec.CommerceNumber)
	assert.Equal(t, "020525", rec.SaleDate)
	assert.Equal(t, "ZX99", rec.ApprovalCode)
	require.NotNil(t, rec.Amount)
	assert.EqualValues(t, 2500, *rec.Amount)
	assert.Equal(t, "09/05/25", rec.PaymentDate)
	assert.Equal(t, "00000000000000000000007001", rec.UniqueNumber)
}

func TestParseShortLine(t *testing.T) {
	_, err := ParseCreditTransaction("DR too short")
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, domain.FileCreditTransaction, perr.Type)

	// Width counts content, not trailing padding.
	_, err = ParseDebitLiquidation(strings.Repeat(" ", 500))
	require.ErrorAs(t, err, &perr)
}

func TestNumericColumnsDegradeToNil(t *testing.T) {
	l := line(229, map[int]string{
		0:   "ABCDEFGH", // non-numeric commerce
		16:  "28042025",
		53:  "00000000000", // all-zero amount reads as absent
		113: "A1B2C3",
		169: "05",
	})

	rec, err := ParseCreditLiquidation(l)
	require.NoError(t, err)
	assert.Nil(t, rec.CommerceNumber)
	assert.Nil(t, rec.Amount)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		header string
		name   string
		want   domain.FileType
	}{
		{"HR0001", "ccn_28042025_0001.dat.gz", domain.FileCreditTransaction},
		{"HR0001", "CDN_28042025_0001.dat", domain.FileDebitTransaction},
		{"HEADER 28042025", "lcn_28042025.dat", domain.FileCreditLiquidation},
		{"HEADER 28042025", "LDN_28042025.dat", domain.FileDebitLiquidation},
	}
	for _, tt := range tests {
		got, err := Detect(tt.header, tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Detect("XX", "unknown.dat")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTypeFromName(t *testing.T) {
	got, err := TypeFromName("LCN_28042025_0001.dat")
	require.NoError(t, err)
	assert.Equal(t, domain.FileCreditLiquidation, got)

	_, err = TypeFromName("resumen_28042025.dat")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
