// Package form holds the mutable Policy Record behind the data-entry form.
//
// Edits arrive as (field name, raw text) pairs. Apply is a pure reducer
// that returns an updated copy of the record; Holder wraps one record for
// the lifetime of a browser session and notifies subscribers on change.
package form

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/utilitycover/debitnote/pkg/models"
)

// ErrUnknownField is returned when an edit names a field the record does not have.
var ErrUnknownField = errors.New("unknown form field")

// Apply returns rec with field set from raw text input.
//
// Numeric fields are parsed as float64; anything that does not parse to a
// finite number is stored as 0. All other fields store raw verbatim. An
// empty generated_by clears the optional field.
func Apply(rec models.PolicyRecord, field, raw string) (models.PolicyRecord, error) {
	out := rec.Clone()

	if models.IsNumericField(field) {
		v := ParseNumber(raw)
		switch field {
		case models.FieldSumInsured:
			out.SumInsured = v
		case models.FieldBasicPremiumRate:
			out.BasicPremiumRate = v
		case models.FieldExcessProtector:
			out.ExcessProtector = v
		case models.FieldTL:
			out.TL = v
		case models.FieldSD:
			out.SD = v
		}
		return out, nil
	}

	switch field {
	case models.FieldInsuranceType:
		out.InsuranceType = models.InsuranceType(raw)
	case models.FieldRadioCassette:
		out.RadioCassette = raw
	case models.FieldWindscreenCover:
		out.WindscreenCover = raw
	case models.FieldClassOfInsurance:
		out.ClassOfInsurance = raw
	case models.FieldPolicyNumber:
		out.PolicyNumber = raw
	case models.FieldNameOfInsured:
		out.NameOfInsured = raw
	case models.FieldOccupation:
		out.Occupation = raw
	case models.FieldPINNumber:
		out.PINNumber = raw
	case models.FieldVehicleCovered:
		out.VehicleCovered = raw
	case models.FieldEngineNo:
		out.EngineNo = raw
	case models.FieldChasis:
		out.Chasis = raw
	case models.FieldSittingCapacity:
		out.SittingCapacity = raw
	case models.FieldColor:
		out.Color = raw
	case models.FieldPeriodOfInsurance:
		out.PeriodOfInsurance = raw
	case models.FieldTermsOfPayment:
		out.TermsOfPayment = raw
	case models.FieldGeneratedBy:
		if raw == "" {
			out.GeneratedBy = nil
		} else {
			v := raw
			out.GeneratedBy = &v
		}
	default:
		return rec, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return out, nil
}

// ApplyAll applies every entry of values to rec in field-name order.
// It stops at the first unknown field and returns rec unchanged.
func ApplyAll(rec models.PolicyRecord, values map[string]string) (models.PolicyRecord, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := rec
	for _, name := range names {
		next, err := Apply(out, name, values[name])
		if err != nil {
			return rec, err
		}
		out = next
	}
	return out, nil
}

// ParseNumber converts raw form input to a float64. Surrounding whitespace
// is ignored; input that is not a finite number yields 0.
func ParseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// KnownField reports whether name is a Policy Record field.
func KnownField(name string) bool {
	for _, f := range models.AllFields {
		if f == name {
			return true
		}
	}
	return false
}
