package premium

import (
	"testing"

	"github.com/utilitycover/debitnote/pkg/models"
)

func record(sum, rate, excess, tl, sd float64) models.PolicyRecord {
	rec := models.DefaultRecord()
	rec.SumInsured = sum
	rec.BasicPremiumRate = rate
	rec.ExcessProtector = excess
	rec.TL = tl
	rec.SD = sd
	return rec
}

func TestComputePreview(t *testing.T) {
	tests := []struct {
		name      string
		rec       models.PolicyRecord
		wantBasic float64
		wantTotal float64
	}{
		{"standard", record(1500000, 3.5, 5000, 200, 300), 52500, 58000},
		{"rate zero falls back to sum insured", record(1000000, 0, 0, 0, 0), 1000000, 1000000},
		{"rate zero with extras", record(1000000, 0, 5000, 100, 40), 1000000, 1005140},
		{"zero sum insured", record(0, 3.5, 0, 0, 0), 0, 0},
		{"zero sum insured with extras", record(0, 3.5, 5000, 200, 300), 0, 5500},
		{"fractional rate", record(850000, 4.25, 0, 0, 0), 36125, 36125},
		{"default rate", record(100, models.DefaultBasicPremiumRate, 0, 0, 0), 3.5, 3.5},
		{"cents add up exactly", record(10, 1, 0.1, 0.2, 0), 0.1, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePreview(tt.rec)
			if got.BasicPremium != tt.wantBasic {
				t.Errorf("BasicPremium = %v, want %v", got.BasicPremium, tt.wantBasic)
			}
			if got.TotalPremium != tt.wantTotal {
				t.Errorf("TotalPremium = %v, want %v", got.TotalPremium, tt.wantTotal)
			}
		})
	}
}

func TestComputePreviewIsPure(t *testing.T) {
	rec := record(1500000, 3.5, 5000, 200, 300)
	before := rec
	_ = ComputePreview(rec)
	if rec != before {
		t.Error("ComputePreview must not modify the record")
	}
	if ComputePreview(rec) != ComputePreview(rec) {
		t.Error("ComputePreview should be deterministic")
	}
}

func TestComputeView(t *testing.T) {
	v := ComputeView(record(1500000, 3.5, 5000, 200, 300))
	if !v.Display {
		t.Error("Display should be true when sum insured is set")
	}
	if v.BasicDisplay != "KES 52,500.00" {
		t.Errorf("BasicDisplay = %q", v.BasicDisplay)
	}
	if v.TotalDisplay != "KES 58,000.00" {
		t.Errorf("TotalDisplay = %q", v.TotalDisplay)
	}
	if v.Rate != "3.5%" {
		t.Errorf("Rate = %q", v.Rate)
	}

	hidden := ComputeView(models.DefaultRecord())
	if hidden.Display {
		t.Error("Display should be false when sum insured is zero")
	}
	if hidden.TotalPremium != 0 {
		t.Errorf("TotalPremium = %v, want 0", hidden.TotalPremium)
	}
}
