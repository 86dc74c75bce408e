// Package premium derives the premium preview shown next to the form.
package premium

import (
	"github.com/shopspring/decimal"

	"github.com/utilitycover/debitnote/pkg/models"
	"github.com/utilitycover/debitnote/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

// Preview is the derived, never-stored premium view of a record.
type Preview struct {
	BasicPremium float64 `json:"basic_premium"`
	TotalPremium float64 `json:"total_premium"`
}

// ComputePreview derives the basic and total premium from rec.
//
//	basic = sum_insured                          when rate == 0
//	basic = sum_insured × rate / 100             otherwise
//	total = basic + excess_protector + tl + sd
//
// A zero sum insured simply yields zero values.
func ComputePreview(rec models.PolicyRecord) Preview {
	sum := decimal.NewFromFloat(rec.SumInsured)

	basic := sum
	if rec.BasicPremiumRate != 0 {
		basic = sum.Mul(decimal.NewFromFloat(rec.BasicPremiumRate)).Div(hundred)
	}

	total := basic.
		Add(decimal.NewFromFloat(rec.ExcessProtector)).
		Add(decimal.NewFromFloat(rec.TL)).
		Add(decimal.NewFromFloat(rec.SD))

	return Preview{
		BasicPremium: basic.InexactFloat64(),
		TotalPremium: total.InexactFloat64(),
	}
}

// View is the preview as presented to the form: raw values plus
// display strings, and whether the view should show it at all.
type View struct {
	Preview
	Display      bool   `json:"display"`
	Rate         string `json:"rate"`
	BasicDisplay string `json:"basic_premium_display"`
	TotalDisplay string `json:"total_premium_display"`
}

// ComputeView wraps ComputePreview with display formatting. The preview is
// hidden while no sum insured has been entered.
func ComputeView(rec models.PolicyRecord) View {
	p := ComputePreview(rec)
	return View{
		Preview:      p,
		Display:      rec.SumInsured != 0,
		Rate:         utils.FormatRate(rec.BasicPremiumRate),
		BasicDisplay: utils.FormatKES(p.BasicPremium),
		TotalDisplay: utils.FormatKES(p.TotalPremium),
	}
}
