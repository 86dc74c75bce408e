package models

import (
	"encoding/json"
	"testing"
)

func TestInsuranceTypeValid(t *testing.T) {
	tests := []struct {
		input InsuranceType
		want  bool
	}{
		{Comprehensive, true},
		{ThirdParty, true},
		{ThirdPartyFireTheft, true},
		{"", false},
		{"Comprehensive", false},
		{"fire_only", false},
	}
	for _, tc := range tests {
		if got := tc.input.Valid(); got != tc.want {
			t.Errorf("InsuranceType(%q).Valid(): got %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestDefaultRecord(t *testing.T) {
	rec := DefaultRecord()
	if rec.BasicPremiumRate != DefaultBasicPremiumRate {
		t.Errorf("BasicPremiumRate: got %v, want %v", rec.BasicPremiumRate, DefaultBasicPremiumRate)
	}
	if rec.SumInsured != 0 || rec.PolicyNumber != "" || rec.GeneratedBy != nil {
		t.Errorf("other fields should be zero: %+v", rec)
	}
}

func TestAllFieldsMatchJSONKeys(t *testing.T) {
	author := "x"
	rec := DefaultRecord()
	rec.GeneratedBy = &author

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var keys map[string]interface{}
	if err := json.Unmarshal(data, &keys); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(keys) != len(AllFields) {
		t.Errorf("record has %d JSON keys, AllFields has %d", len(keys), len(AllFields))
	}
	for _, name := range AllFields {
		if _, ok := keys[name]; !ok {
			t.Errorf("AllFields entry %q is not a JSON key of PolicyRecord", name)
		}
	}
}

func TestGeneratedByOmittedWhenNil(t *testing.T) {
	data, err := json.Marshal(DefaultRecord())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var keys map[string]interface{}
	_ = json.Unmarshal(data, &keys)
	if _, ok := keys[FieldGeneratedBy]; ok {
		t.Error("generated_by should be omitted when nil")
	}
}

func TestNumericFields(t *testing.T) {
	want := []string{FieldSumInsured, FieldBasicPremiumRate, FieldExcessProtector, FieldTL, FieldSD}
	if len(NumericFields) != len(want) {
		t.Errorf("NumericFields: got %d entries, want %d", len(NumericFields), len(want))
	}
	for _, name := range want {
		if !IsNumericField(name) {
			t.Errorf("%s should be numeric", name)
		}
	}
	if IsNumericField(FieldSittingCapacity) {
		t.Error("sitting_capacity is free text")
	}
}

func TestClone(t *testing.T) {
	author := "Agent"
	rec := PolicyRecord{GeneratedBy: &author, Color: "Blue"}
	cp := rec.Clone()

	*cp.GeneratedBy = "Other"
	if *rec.GeneratedBy != "Agent" {
		t.Error("Clone shares GeneratedBy with the original")
	}
	if cp.Color != "Blue" {
		t.Errorf("Color: got %q", cp.Color)
	}
}

func TestHasGeneratedBy(t *testing.T) {
	empty, name := "", "Agent"
	tests := []struct {
		value *string
		want  bool
	}{
		{nil, false},
		{&empty, false},
		{&name, true},
	}
	for _, tc := range tests {
		rec := PolicyRecord{GeneratedBy: tc.value}
		if got := rec.HasGeneratedBy(); got != tc.want {
			t.Errorf("HasGeneratedBy(%v): got %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestTextAndNumberAccessors(t *testing.T) {
	author := "Agent"
	rec := PolicyRecord{
		InsuranceType:  ThirdParty,
		VehicleCovered: "KAA 123A",
		SumInsured:     1000,
		SD:             40,
		GeneratedBy:    &author,
	}

	if got := rec.Text(FieldInsuranceType); got != "third_party" {
		t.Errorf("Text(insurance_type): got %q", got)
	}
	if got := rec.Text(FieldVehicleCovered); got != "KAA 123A" {
		t.Errorf("Text(vehicle_covered): got %q", got)
	}
	if got := rec.Text(FieldGeneratedBy); got != "Agent" {
		t.Errorf("Text(generated_by): got %q", got)
	}
	if got := rec.Text("nope"); got != "" {
		t.Errorf("Text(unknown): got %q", got)
	}
	if got := rec.Number(FieldSumInsured); got != 1000 {
		t.Errorf("Number(sum_insured): got %v", got)
	}
	if got := rec.Number(FieldSD); got != 40 {
		t.Errorf("Number(sd): got %v", got)
	}
	if got := rec.Number(FieldColor); got != 0 {
		t.Errorf("Number(color): got %v", got)
	}
}
