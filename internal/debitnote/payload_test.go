package debitnote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/utilitycover/debitnote/pkg/models"
)

func sampleRecord() models.PolicyRecord {
	rec := models.DefaultRecord()
	rec.InsuranceType = models.ThirdPartyFireTheft
	rec.SumInsured = 1500000
	rec.ExcessProtector = 5000
	rec.TL = 200
	rec.SD = 300
	rec.RadioCassette = "yes"
	rec.WindscreenCover = "50000"
	rec.ClassOfInsurance = "Motor Private"
	rec.PolicyNumber = "POL/123/2025"
	rec.NameOfInsured = "Jane Wanjiru"
	rec.Occupation = "Doctor"
	rec.PINNumber = "A012345678Z"
	rec.VehicleCovered = "KAA 123A"
	rec.EngineNo = "1NZ-123456"
	rec.Chasis = "NZE121-000001"
	rec.SittingCapacity = "5"
	rec.Color = "Silver"
	rec.PeriodOfInsurance = "01/01/2025 to 31/12/2025"
	rec.TermsOfPayment = "Annual"
	return rec
}

var issued = time.Date(2025, 3, 7, 10, 30, 0, 0, time.UTC)

func decodePayload(t *testing.T, rec models.PolicyRecord) map[string]any {
	t.Helper()
	data, err := BuildPayload(rec, issued)
	if err != nil {
		t.Fatalf("BuildPayload error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	return m
}

func TestBuildPayloadOmitsEmptyGeneratedBy(t *testing.T) {
	rec := sampleRecord()
	if _, ok := decodePayload(t, rec)["generated_by"]; ok {
		t.Error("nil generated_by must not be sent")
	}

	empty := ""
	rec.GeneratedBy = &empty
	if _, ok := decodePayload(t, rec)["generated_by"]; ok {
		t.Error("empty generated_by must not be sent")
	}
}

func TestBuildPayloadIncludesGeneratedBy(t *testing.T) {
	rec := sampleRecord()
	name := "Jane"
	rec.GeneratedBy = &name

	m := decodePayload(t, rec)
	if m["generated_by"] != "Jane" {
		t.Errorf("generated_by: got %v, want Jane", m["generated_by"])
	}
}

func TestBuildPayloadCarriesAllFields(t *testing.T) {
	m := decodePayload(t, sampleRecord())

	for _, field := range models.AllFields {
		if field == models.FieldGeneratedBy {
			continue
		}
		if _, ok := m[field]; !ok {
			t.Errorf("payload missing %q", field)
		}
	}

	if m["sum_insured"] != 1500000.0 {
		t.Errorf("sum_insured should be numeric, got %#v", m["sum_insured"])
	}
	if m["basic_premium_rate"] != 3.5 {
		t.Errorf("basic_premium_rate: got %#v", m["basic_premium_rate"])
	}
	if m["insurance_type"] != "third_party_fire_theft" {
		t.Errorf("insurance_type: got %#v", m["insurance_type"])
	}
	if m["vehicle_covered"] != "KAA 123A" {
		t.Errorf("vehicle_covered: got %#v", m["vehicle_covered"])
	}
	if m["date_issued"] != "07/03/2025" {
		t.Errorf("date_issued: got %#v", m["date_issued"])
	}
}

func TestNewPayloadDoesNotAliasRecord(t *testing.T) {
	rec := sampleRecord()
	name := "Jane"
	rec.GeneratedBy = &name

	p := NewPayload(rec, issued)
	*p.GeneratedBy = "John"
	if name != "Jane" {
		t.Error("payload must not share the record's generated_by")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		vehicle string
		want    string
	}{
		{"KAA 123A", "DebitNote_KAA123A_07-03-2025.pdf"},
		{"  KBZ\t 9 9 9 ", "DebitNote_KBZ999_07-03-2025.pdf"},
		{"", "DebitNote__07-03-2025.pdf"},
		{"KAA\u00a0123A", "DebitNote_KAA123A_07-03-2025.pdf"},
		{"KAA\v123A", "DebitNote_KAA123A_07-03-2025.pdf"},
		{"KAA\u2003123A\u3000", "DebitNote_KAA123A_07-03-2025.pdf"},
		{"\u00a0\u2003", "DebitNote__07-03-2025.pdf"},
	}
	for _, tt := range tests {
		if got := Filename(tt.vehicle, issued); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.vehicle, got, tt.want)
		}
	}
}
