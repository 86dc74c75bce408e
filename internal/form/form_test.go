package form

import (
	"errors"
	"sync"
	"testing"

	"github.com/utilitycover/debitnote/pkg/models"
)

func TestApplyNumericFieldsCoerceInvalidToZero(t *testing.T) {
	inputs := []string{"abc", "", "12abc", "1,500,000", "NaN", "Inf", "-Inf", "--1"}

	for field := range models.NumericFields {
		for _, raw := range inputs {
			t.Run(field+"/"+raw, func(t *testing.T) {
				start := models.DefaultRecord()
				start, _ = Apply(start, field, "42")

				got, err := Apply(start, field, raw)
				if err != nil {
					t.Fatalf("Apply(%q, %q) error: %v", field, raw, err)
				}
				if v := got.Number(field); v != 0 {
					t.Errorf("Apply(%q, %q) stored %v, want 0", field, raw, v)
				}
			})
		}
	}
}

func TestApplyNumericFieldsStoreParsedFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"0", 0},
		{"1500000", 1500000},
		{"3.5", 3.5},
		{" 200 ", 200},
		{"1e3", 1000},
		{"-5", -5},
		{"0.01", 0.01},
	}

	for field := range models.NumericFields {
		for _, tt := range tests {
			t.Run(field+"/"+tt.raw, func(t *testing.T) {
				got, err := Apply(models.DefaultRecord(), field, tt.raw)
				if err != nil {
					t.Fatalf("Apply error: %v", err)
				}
				if v := got.Number(field); v != tt.want {
					t.Errorf("Apply(%q, %q) = %v, want %v", field, tt.raw, v, tt.want)
				}
			})
		}
	}
}

func TestApplyTextFieldsVerbatim(t *testing.T) {
	for _, field := range models.AllFields {
		if models.IsNumericField(field) {
			continue
		}
		for _, raw := range []string{"KAA 123A", "  padded  ", "12abc"} {
			got, err := Apply(models.DefaultRecord(), field, raw)
			if err != nil {
				t.Fatalf("Apply(%q) error: %v", field, err)
			}
			if v := got.Text(field); v != raw {
				t.Errorf("Apply(%q, %q) stored %q", field, raw, v)
			}
		}
	}
}

func TestApplyTextFieldAcceptsEmpty(t *testing.T) {
	rec, _ := Apply(models.DefaultRecord(), models.FieldPolicyNumber, "POL/1")
	rec, err := Apply(rec, models.FieldPolicyNumber, "")
	if err != nil {
		t.Fatal(err)
	}
	if rec.PolicyNumber != "" {
		t.Errorf("PolicyNumber: got %q, want empty", rec.PolicyNumber)
	}
}

func TestApplyGeneratedByOptional(t *testing.T) {
	rec, _ := Apply(models.DefaultRecord(), models.FieldGeneratedBy, "Jane")
	if !rec.HasGeneratedBy() || *rec.GeneratedBy != "Jane" {
		t.Fatalf("GeneratedBy: got %v, want Jane", rec.GeneratedBy)
	}

	rec, _ = Apply(rec, models.FieldGeneratedBy, "")
	if rec.GeneratedBy != nil {
		t.Errorf("empty generated_by should clear the field, got %q", *rec.GeneratedBy)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	name := "Jane"
	orig := models.DefaultRecord()
	orig.GeneratedBy = &name

	next, _ := Apply(orig, models.FieldGeneratedBy, "John")
	_, _ = Apply(orig, models.FieldSumInsured, "100")

	if *orig.GeneratedBy != "Jane" {
		t.Errorf("input record mutated: %q", *orig.GeneratedBy)
	}
	if orig.SumInsured != 0 {
		t.Errorf("input SumInsured mutated: %v", orig.SumInsured)
	}
	if *next.GeneratedBy != "John" {
		t.Errorf("next GeneratedBy = %q", *next.GeneratedBy)
	}
}

func TestApplyUnknownField(t *testing.T) {
	rec := models.DefaultRecord()
	got, err := Apply(rec, "premium_override", "1")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if got != rec {
		t.Error("record should be unchanged on unknown field")
	}
}

func TestApplyAll(t *testing.T) {
	rec, err := ApplyAll(models.DefaultRecord(), map[string]string{
		models.FieldSumInsured:     "1500000",
		models.FieldVehicleCovered: "KAA 123A",
		models.FieldTL:             "oops",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.SumInsured != 1500000 || rec.VehicleCovered != "KAA 123A" || rec.TL != 0 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.BasicPremiumRate != models.DefaultBasicPremiumRate {
		t.Errorf("default rate lost: %v", rec.BasicPremiumRate)
	}

	if _, err := ApplyAll(rec, map[string]string{"bogus": "x"}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestHolderSetNotifiesListeners(t *testing.T) {
	h := NewHolder()

	var got []models.PolicyRecord
	h.Subscribe(func(rec models.PolicyRecord, _ uint64) { got = append(got, rec) })

	if _, err := h.Set(models.FieldSumInsured, "1000"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Set("nope", "1"); err == nil {
		t.Fatal("expected error for unknown field")
	}
	h.Reset()

	if len(got) != 2 {
		t.Fatalf("listener calls: got %d, want 2", len(got))
	}
	if got[0].SumInsured != 1000 {
		t.Errorf("first notification SumInsured = %v", got[0].SumInsured)
	}
	if got[1].SumInsured != 0 || got[1].BasicPremiumRate != models.DefaultBasicPremiumRate {
		t.Errorf("reset notification = %+v", got[1])
	}
}

func TestHolderSnapshotIsCopy(t *testing.T) {
	h := NewHolder()
	h.Set(models.FieldGeneratedBy, "Jane")

	snap := h.Snapshot()
	*snap.GeneratedBy = "Mallory"

	if h.Snapshot().Text(models.FieldGeneratedBy) != "Jane" {
		t.Error("Snapshot should not share memory with the holder")
	}
}

func TestHolderConcurrentSet(t *testing.T) {
	h := NewHolder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Set(models.FieldColor, "Silver")
			_ = h.Snapshot()
		}()
	}
	wg.Wait()

	if h.Snapshot().Color != "Silver" {
		t.Errorf("Color = %q", h.Snapshot().Color)
	}
}

func TestHolderResetRestoresInitialRecord(t *testing.T) {
	initial := models.DefaultRecord()
	initial.BasicPremiumRate = 4
	h := NewHolderWith(initial)

	if _, err := h.Set(models.FieldBasicPremiumRate, "7"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := h.Set(models.FieldColor, "Red"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var notified int
	h.Subscribe(func(models.PolicyRecord, uint64) { notified++ })

	got := h.Reset()
	if got.BasicPremiumRate != 4 || got.Color != "" {
		t.Errorf("Reset() = rate %v color %q, want 4 and empty", got.BasicPremiumRate, got.Color)
	}
	if notified != 1 {
		t.Errorf("listener calls = %d, want 1", notified)
	}

	initial.BasicPremiumRate = 9
	if h.Reset().BasicPremiumRate != 4 {
		t.Error("holder should not alias the record it was created with")
	}
}

func TestHolderSetSeqRejectsStaleEdits(t *testing.T) {
	h := NewHolder()

	var seen []uint64
	h.Subscribe(func(_ models.PolicyRecord, seq uint64) { seen = append(seen, seq) })

	// Keystrokes "1" then "15", delivered out of order.
	if _, seq, err := h.SetSeq(models.FieldSumInsured, "15", 2); err != nil || seq != 2 {
		t.Fatalf("SetSeq(15, 2) = seq %d, err %v", seq, err)
	}
	rec, seq, err := h.SetSeq(models.FieldSumInsured, "1", 1)
	if !errors.Is(err, ErrStaleEdit) {
		t.Fatalf("SetSeq(1, 1) err = %v, want ErrStaleEdit", err)
	}
	if rec.SumInsured != 15 || seq != 2 {
		t.Errorf("after stale edit: SumInsured = %v, seq = %d; want 15, 2", rec.SumInsured, seq)
	}

	// A repeated number is stale too.
	if _, _, err := h.SetSeq(models.FieldColor, "Red", 2); !errors.Is(err, ErrStaleEdit) {
		t.Errorf("repeated seq err = %v, want ErrStaleEdit", err)
	}

	// Unsequenced edits always apply and keep the sequence.
	if _, seq, err := h.SetSeq(models.FieldColor, "Blue", 0); err != nil || seq != 2 {
		t.Errorf("unsequenced edit: seq %d, err %v", seq, err)
	}

	h.Reset()
	if _, seq := h.Current(); seq != 2 {
		t.Errorf("Reset should keep the sequence, got %d", seq)
	}
	if _, _, err := h.SetSeq(models.FieldSumInsured, "7", 3); err != nil {
		t.Errorf("next edit after reset: %v", err)
	}

	want := []uint64{2, 2, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("listener seqs = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("listener seqs = %v, want %v", seen, want)
		}
	}
}

func TestHolderSetSeqUnknownFieldKeepsSequence(t *testing.T) {
	h := NewHolder()
	if _, _, err := h.SetSeq("nope", "x", 5); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
	if _, seq := h.Current(); seq != 0 {
		t.Errorf("rejected edit advanced seq to %d", seq)
	}
}
