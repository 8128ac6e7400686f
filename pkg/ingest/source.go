package ingest

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/match"
	"github.com/acquirex/reconcile/pkg/parser"
)

// FileInfo describes one candidate file as reported by the source.
type FileInfo struct {
	Name         string
	Path         string
	IsCompressed bool
	Size         int64
}

// Lister enumerates candidate files. Its answer is authoritative: a
// listing failure fails the whole run.
type Lister interface {
	List(ctx context.Context) ([]FileInfo, error)
}

// Fetcher retrieves one file's raw bytes.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// LogicalName strips the archive suffix so the same content is
// recognized whether it arrives compressed or not.
func LogicalName(name string) string {
	return strings.TrimSuffix(name, ".gz")
}

// nameDate is the DDMMYYYY stamp embedded in delivered file names, as in
// "LCN_28042025_0001.dat".
var nameDate = regexp.MustCompile(`_([0-9]{8})`)

// Filter narrows a listing. Filters combine; an explicit name filter
// takes precedence over the date range.
type Filter struct {
	Names    []string
	From, To time.Time
	Families []domain.Family
}

func (f Filter) matchesFamily(name string) bool {
	if len(f.Families) == 0 {
		return true
	}
	t, err := parser.TypeFromName(LogicalName(name))
	if err != nil {
		return false
	}
	for _, fam := range f.Families {
		if t.Family() == fam {
			return true
		}
	}
	return false
}

func (f Filter) matchesDate(name string) bool {
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	m := nameDate.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	day, ok := match.DayDDMMYYYY(m[1])
	if !ok {
		return false
	}
	if !f.From.IsZero() && day.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && day.After(f.To) {
		return false
	}
	return true
}

// Apply returns the files selected by the filter, in listing order.
func (f Filter) Apply(files []FileInfo) []FileInfo {
	var out []FileInfo
	for _, fi := range files {
		if !f.matchesFamily(fi.Name) {
			continue
		}
		if len(f.Names) > 0 {
			for _, n := range f.Names {
				if LogicalName(n) == LogicalName(fi.Name) {
					out = append(out, fi)
					break
				}
			}
			continue
		}
		if f.matchesDate(fi.Name) {
			out = append(out, fi)
		}
	}
	return out
}
