package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/finops/internal/model"
	"github.com/ppiankov/finops/internal/normalize"
	"github.com/ppiankov/finops/internal/util"
)

// ErrTitleUnparsed is returned when a filing title lacks the period type or
// end date
var ErrTitleUnparsed = errors.New("filing title not parsed")

// Title markers, in cleaned form (no zero-width joiners)
const (
	markerAudited      = "حسابرسی شده"
	markerCorrection   = "اصلاحیه"
	markerConsolidated = "تلفیقی"
	markerAnnual       = "سال مالی"
	markerInterim      = "میاندورهای"
)

var periodLength = regexp.MustCompile(`(\d+) ماهه`)

// ParsePeriod derives the period metadata of a filing from its title
func ParsePeriod(title string) (model.Period, error) {
	var p model.Period

	cleaned := normalize.Persian(title)
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	p.Audited = strings.Contains(cleaned, markerAudited)
	p.Correction = strings.Contains(cleaned, markerCorrection)
	p.Consolidated = strings.Contains(cleaned, markerConsolidated)

	annual := strings.Index(cleaned, markerAnnual)
	interim := strings.Index(cleaned, markerInterim)
	switch {
	case annual >= 0 && (interim < 0 || annual < interim):
		p.Type = model.PeriodAnnual
	case interim >= 0:
		p.Type = model.PeriodInterim
	default:
		return p, fmt.Errorf("%w: no period type in %q", ErrTitleUnparsed, title)
	}

	if m := periodLength.FindStringSubmatch(cleaned); m != nil {
		p.LengthMonths, _ = strconv.Atoi(m[1])
	}

	end, err := util.FindJalaliDate(cleaned)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrTitleUnparsed, err)
	}
	p.EndDate = end

	return p, nil
}
