package parser

import "github.com/acquirex/reconcile/pkg/domain"

// CreditTransaction is one CCN detail line: an original credit-card
// authorization event. Dates are kept as opaque digit strings in the
// encodings the acquirer uses (RRMMDD here); normalization happens in the
// matcher, never at decode time.
type CreditTransaction struct {
	RecordType       string
	MessageType      *int64
	TransactionCode  *int64
	SequenceNumber   string
	TransactionDate  string // RRMMDD
	TransactionTime  string
	RetailerInstance string
	RetailerID       *int64
	RetailerName     string
	CardNumber       string
	Amount           *int64 // cents
	TipAmount        *int64
	InstallmentType  *int64
	InstallmentCount *int64
	ResponseCode     *int64
	ApprovalCode     string
	TerminalName     string
	RegisterID       string
	ReceiptNumber    string
	AuthTrack2       string
	SaleDate         string // RRMMDD
	SaleTime         string
	PaymentDate      string // RRMMDD
	RejectCode       string
	RejectReason     string
	InstallmentValue *int64
	RateValue        *int64
	UniqueNumber     string
	CurrencyType     *int64
	RetailerIDRe     *int64
	ServiceCode      string
	VCI              string
	GraceMonth       string
	GracePeriod      string
}

// FileType implements Record.
func (CreditTransaction) FileType() domain.FileType { return domain.FileCreditTransaction }

// ParseCreditTransaction decodes one CCN detail line.
func ParseCreditTransaction(line string) (*CreditTransaction, error) {
	if err := checkWidth(domain.FileCreditTransaction, line, minWidthCreditTransaction); err != nil {
		return nil, err
	}
	return &CreditTransaction{
		RecordType:       cut(line, 0, 2),
		MessageType:      cutInt(line, 2, 6),
		TransactionCode:  cutInt(line, 6, 8),
		SequenceNumber:   cut(line, 8, 20),
		TransactionDate:  cut(line, 20, 26),
		TransactionTime:  cut(line, 26, 32),
		RetailerInstance: cut(line, 32, 36),
		RetailerID:       cutInt(line, 36, 44),
		RetailerName:     cut(line, 44, 64),
		CardNumber:       cut(line, 64, 83),
		Amount:           cutInt(line, 83, 96),
		TipAmount:        cutInt(line, 96, 105),
		InstallmentType:  cutInt(line, 105, 106),
		InstallmentCount: cutInt(line, 106, 108),
		ResponseCode:     cutInt(line, 108, 111),
		ApprovalCode:     cut(line, 111, 119),
		TerminalName:     cut(line, 119, 135),
		RegisterID:       cut(line, 135, 151),
		ReceiptNumber:    cut(line, 151, 161),
		AuthTrack2:       cut(line, 161, 162),
		SaleDate:         cut(line, 162, 168),
		SaleTime:         cut(line, 168, 174),
		PaymentDate:      cut(line, 174, 180),
		RejectCode:       cut(line, 180, 183),
		RejectReason:     cut(line, 183, 203),
		InstallmentValue: cutInt(line, 203, 212),
		RateValue:        cutInt(line, 212, 216),
		UniqueNumber:     cut(line, 216, 242),
		CurrencyType:     cutInt(line, 242, 243),
		RetailerIDRe:     cutInt(line, 243, 251),
		ServiceCode:      cut(line, 251, 271),
		VCI:              cut(line, 271, 275),
		GraceMonth:       cut(line, 275, 276),
		GracePeriod:      cut(line, 276, 278),
	}, nil
}

// DebitTransaction is one CDN detail line: an original debit-card
// authorization event.
type DebitTransaction struct {
	RecordType      string
	MessageType     *int64
	TransactionCode *int64
	TransactionDate string // RRMMDD
	TransactionTime string
	RetailerID      *int64
	RetailerName    string
	CardNumber      string
	Amount          *int64 // cents
	SecondaryAmount string
	TipAmount       *int64
	ResponseCode    *int64
	ApprovalCode    string
	TerminalName    string
	RegisterID      string
	ReceiptNumber   string
	PaymentDate     string // RRMMDD
	Ident           string
	RetailerIDRe    *int64
	ServiceCode     string
	UniqueNumber    string
	Prepaid         string
}

// FileType implements Record.
func (DebitTransaction) FileType() domain.FileType { return domain.FileDebitTransaction }

// ParseDebitTransaction decodes one CDN detail line.
func ParseDebitTransaction(line string) (*DebitTransaction, error) {
	if err := checkWidth(domain.FileDebitTransaction, line, minWidthDebitTransaction); err != nil {
		return nil, err
	}
	return &DebitTransaction{
		RecordType:      cut(line, 0, 2),
		MessageType:     cutInt(line, 2, 6),
		TransactionCode: cutInt(line, 6, 8),
		TransactionDate: cut(line, 8, 14),
		TransactionTime: cut(line, 14, 20),
		RetailerID:      cutInt(line, 20, 32),
		RetailerName:    cut(line, 32, 52),
		CardNumber:      cut(line, 52, 71),
		Amount:          cutInt(line, 71, 84),
		SecondaryAmount: cut(line, 84, 97),
		TipAmount:       cutInt(line, 97, 106),
		ResponseCode:    cutInt(line, 106, 109),
		ApprovalCode:    cut(line, 109, 117),
		TerminalName:    cut(line, 117, 133),
		RegisterID:      cut(line, 133, 149),
		ReceiptNumber:   cut(line, 149, 159),
		PaymentDate:     cut(line, 159, 165),
		Ident:           cut(line, 165, 167),
		RetailerIDRe:    cutInt(line, 167, 175),
		ServiceCode:     cut(line, 175, 195),
		UniqueNumber:    cut(line, 195, 221),
		Prepaid:         cut(line, 221, 222),
	}, nil
}

// CreditLiquidation is one LCN detail line: a settlement event for a
// credit-card sale, one row per installment payment.
type CreditLiquidation struct {
	CommerceNumber    *int64
	ProcessDate       string // DDMMYYYY
	SaleDate          string // DDMMYYYY
	MICR              string
	CardNumber        string
	Brand             string
	Amount            *int64 // cents, per installment
	Currency          *int64
	TransactionCount  string
	Withheld          string // "0000" marks a full (single-payment) settlement
	PrincipalCommerce *int64
	PaymentDate       string // DDMMYYYY
	OrderNumber       string // primary unique-number field
	AuthorizationCode string
	Installment       *int64
	VCI               *int64
	CommissionAmount  *int64
	CommissionVAT     *int64
	DiscountAmount    *int64
	DiscountVAT       *int64
	TotalInstallments *int64
	BankName          string
	BankAccountType   string
	BankAccountNumber string
	BankAccountCcy    string
}

// FileType implements Record.
func (CreditLiquidation) FileType() domain.FileType { return domain.FileCreditLiquidation }

// ParseCreditLiquidation decodes one LCN detail line.
func ParseCreditLiquidation(line string) (*CreditLiquidation, error) {
	if err := checkWidth(domain.FileCreditLiquidation, line, minWidthCreditLiquidation); err != nil {
		return nil, err
	}
	return &CreditLiquidation{
		CommerceNumber:    cutInt(line, 0, 8),
		ProcessDate:       cut(line, 8, 16),
		SaleDate:          cut(line, 16, 24),
		MICR:              cut(line, 24, 32),
		CardNumber:        cut(line, 32, 51),
		Brand:             cut(line, 51, 53),
		Amount:            cutInt(line, 53, 64),
		Currency:          cutInt(line, 64, 65),
		TransactionCount:  cut(line, 65, 67),
		Withheld:          cut(line, 67, 71),
		PrincipalCommerce: cutInt(line, 71, 79),
		PaymentDate:       cut(line, 79, 87),
		OrderNumber:       cut(line, 87, 113),
		AuthorizationCode: cut(line, 113, 119),
		Installment:       cutInt(line, 119, 121),
		VCI:               cutInt(line, 121, 125),
		CommissionAmount:  cutInt(line, 125, 136),
		CommissionVAT:     cutInt(line, 136, 147),
		DiscountAmount:    cutInt(line, 147, 158),
		DiscountVAT:       cutInt(line, 158, 169),
		TotalInstallments: cutInt(line, 169, 171),
		BankName:          cut(line, 171, 206),
		BankAccountType:   cut(line, 206, 208),
		BankAccountNumber: cut(line, 208, 226),
		BankAccountCcy:    cut(line, 226, 229),
	}, nil
}

// DebitLiquidation is one LDN detail line: a settlement event for a
// debit-card sale. Debit sales settle in full, so the installment
// columns of the credit family have no counterpart here.
type DebitLiquidation struct {
	CommerceNumber    *int64
	ProcessDate       string // DDMMRR
	SaleDate          string // DDMMRR
	ApprovalCode      string
	CardNumber        string
	Amount            *int64 // cents
	TransactionCount  string
	PrincipalCommerce string
	Brand             string
	PaymentDate       string // DD/MM/RR
	UniqueNumber      string
	CommissionAmount  *int64
	CommissionVAT     string
	DiscountAmount    *int64
	DiscountVAT       string
	Prepaid           string
	BankName          string
	BankAccountType   string
	BankAccountNumber string
	BankAccountCcy    string
}

// FileType implements Record.
func (DebitLiquidation) FileType() domain.FileType { return domain.FileDebitLiquidation }

// ParseDebitLiquidation decodes one LDN detail line.
func ParseDebitLiquidation(line string) (*DebitLiquidation, error) {
	if err := checkWidth(domain.FileDebitLiquidation, line, minWidthDebitLiquidation); err != nil {
		return nil, err
	}
	return &DebitLiquidation{
		CommerceNumber:    cutInt(line, 0, 8),
		ProcessDate:       cut(line, 8, 14),
		SaleDate:          cut(line, 14, 20),
		ApprovalCode:      cut(line, 20, 26),
		CardNumber:        cut(line, 26, 45),
		Amount:            cutInt(line, 45, 58),
		TransactionCount:  cut(line, 58, 60),
		PrincipalCommerce: cut(line, 60, 68),
		Brand:             cut(line, 68, 70),
		PaymentDate:       cut(line, 70, 78),
		UniqueNumber:      cut(line, 78, 104),
		CommissionAmount:  cutInt(line, 104, 117),
		CommissionVAT:     cut(line, 117, 130),
		DiscountAmount:    cutInt(line, 130, 143),
		DiscountVAT:       cut(line, 143, 156),
		Prepaid:           cut(line, 156, 157),
		BankName:          cut(line, 157, 192),
		BankAccountType:   cut(line, 192, 194),
		BankAccountNumber: cut(line, 194, 212),
		BankAccountCcy:    cut(line, 212, 215),
	}, nil
}
