// Package plan provides plan catalog value types and pure functions.
package plan

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DataCap is a structured monthly data allowance. Unlimited is a distinct
// tag, not a large number. A cap is computed once when the plan is created
// and never re-parsed from its display label.
type DataCap struct {
	GB        float64
	Unlimited bool
}

// CapGB returns a finite data cap of gb gigabytes.
func CapGB(gb float64) DataCap {
	return DataCap{GB: gb}
}

// CapUnlimited returns the unlimited data cap.
func CapUnlimited() DataCap {
	return DataCap{Unlimited: true}
}

// ParseCap maps a human cap label to a structured DataCap.
// "500 GB" parses to 500, "1 TB" to 1000. Labels that do not name a
// finite allowance ("Unlimited", free-form text) map to unlimited.
// This is a PURE function.
func ParseCap(label string) DataCap {
	fields := strings.Fields(strings.TrimSpace(label))
	if len(fields) == 2 {
		n, err := strconv.ParseFloat(fields[0], 64)
		if err == nil && n > 0 {
			switch strings.ToUpper(fields[1]) {
			case "GB":
				return DataCap{GB: n}
			case "TB":
				return DataCap{GB: n * 1000}
			}
		}
	}
	return DataCap{Unlimited: true}
}

// Label renders the cap in display form.
func (c DataCap) Label() string {
	if c.Unlimited {
		return "Unlimited"
	}
	if c.GB >= 1000 && c.GB == float64(int64(c.GB)) && int64(c.GB)%1000 == 0 {
		return strconv.FormatInt(int64(c.GB)/1000, 10) + " TB"
	}
	return strconv.FormatFloat(c.GB, 'f', -1, 64) + " GB"
}

// Plan represents a purchasable service tier (immutable value type).
// The name is the catalog key; everything else references plans by name.
type Plan struct {
	Name         string
	Speed        string
	PriceMonthly decimal.Decimal
	Cap          DataCap
	Description  string
	CreatedAt    time.Time
}

// Find locates a plan by name in catalog order.
// This is a PURE function.
func Find(plans []Plan, name string) (Plan, bool) {
	for _, p := range plans {
		if p.Name == name {
			return p, true
		}
	}
	return Plan{}, false
}
