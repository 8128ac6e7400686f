package parser

import (
	"fmt"
	"strings"

	"github.com/acquirex/reconcile/pkg/domain"
)

// Detect determines the file type from the header line and the file name.
// Authorization files open with an "HR" header record; settlement files
// carry a literal HEADER marker. The name disambiguates the family.
func Detect(header, fileName string) (domain.FileType, error) {
	upper := strings.ToUpper(fileName)
	switch {
	case strings.HasPrefix(header, "HR") && strings.Contains(upper, "CCN"):
		return domain.FileCreditTransaction, nil
	case strings.HasPrefix(header, "HR") && strings.Contains(upper, "CDN"):
		return domain.FileDebitTransaction, nil
	case strings.Contains(header, "HEADER") && strings.Contains(upper, "LCN"):
		return domain.FileCreditLiquidation, nil
	case strings.Contains(header, "HEADER") && strings.Contains(upper, "LDN"):
		return domain.FileDebitLiquidation, nil
	}
	return "", fmt.Errorf("cannot determine file type of %q: %w", fileName, domain.ErrValidation)
}

// TypeFromName derives the file type from the leading token of a logical
// file name such as "LCN_28042025_0001.dat".
func TypeFromName(logicalName string) (domain.FileType, error) {
	token, _, _ := strings.Cut(logicalName, "_")
	t := domain.FileType(strings.ToUpper(token))
	if !t.Valid() {
		return "", fmt.Errorf("file name %q does not start with a known type: %w",
			logicalName, domain.ErrValidation)
	}
	return t, nil
}
