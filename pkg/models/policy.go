// Package models defines the data structures shared by the debit note service.
package models

// InsuranceType is the motor cover class printed on the debit note.
type InsuranceType string

const (
	Comprehensive       InsuranceType = "comprehensive"
	ThirdParty          InsuranceType = "third_party"
	ThirdPartyFireTheft InsuranceType = "third_party_fire_theft"
)

// InsuranceTypes lists every accepted insurance type in display order.
var InsuranceTypes = []InsuranceType{Comprehensive, ThirdParty, ThirdPartyFireTheft}

// Valid reports whether t is one of the known insurance types.
func (t InsuranceType) Valid() bool {
	for _, known := range InsuranceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DefaultBasicPremiumRate is the rate (in percent) a fresh form starts with.
const DefaultBasicPremiumRate = 3.5

// Field names as sent by the form and used as JSON keys.
const (
	FieldInsuranceType     = "insurance_type"
	FieldSumInsured        = "sum_insured"
	FieldBasicPremiumRate  = "basic_premium_rate"
	FieldExcessProtector   = "excess_protector"
	FieldRadioCassette     = "radio_cassette"
	FieldWindscreenCover   = "windscreen_cover"
	FieldTL                = "tl"
	FieldSD                = "sd"
	FieldClassOfInsurance  = "class_of_insurance"
	FieldPolicyNumber      = "policy_number"
	FieldNameOfInsured     = "name_of_insured"
	FieldOccupation        = "occupation"
	FieldPINNumber         = "pin_number"
	FieldVehicleCovered    = "vehicle_covered"
	FieldEngineNo          = "engine_no"
	FieldChasis            = "chasis"
	FieldSittingCapacity   = "sitting_capacity"
	FieldColor             = "color"
	FieldPeriodOfInsurance = "period_of_insurance"
	FieldTermsOfPayment    = "terms_of_payment"
	FieldGeneratedBy       = "generated_by"
)

// NumericFields is the set of fields coerced to float64 on every edit.
var NumericFields = map[string]bool{
	FieldSumInsured:       true,
	FieldBasicPremiumRate: true,
	FieldExcessProtector:  true,
	FieldTL:               true,
	FieldSD:               true,
}

// AllFields lists every Policy Record field in form order.
var AllFields = []string{
	FieldPolicyNumber,
	FieldClassOfInsurance,
	FieldInsuranceType,
	FieldPeriodOfInsurance,
	FieldTermsOfPayment,
	FieldNameOfInsured,
	FieldOccupation,
	FieldPINNumber,
	FieldVehicleCovered,
	FieldEngineNo,
	FieldChasis,
	FieldSittingCapacity,
	FieldColor,
	FieldSumInsured,
	FieldBasicPremiumRate,
	FieldExcessProtector,
	FieldRadioCassette,
	FieldWindscreenCover,
	FieldTL,
	FieldSD,
	FieldGeneratedBy,
}

// IsNumericField reports whether name belongs to the numeric field set.
func IsNumericField(name string) bool {
	return NumericFields[name]
}

// PolicyRecord is the in-memory set of fields describing one debit note
// being drafted. Numeric fields always hold a number; invalid input is
// stored as zero by the form reducer.
type PolicyRecord struct {
	InsuranceType    InsuranceType `json:"insurance_type"     validate:"required,insurance_type"`
	SumInsured       float64       `json:"sum_insured"        validate:"gt=0"`
	BasicPremiumRate float64       `json:"basic_premium_rate" validate:"gte=0"` // percent
	ExcessProtector  float64       `json:"excess_protector"   validate:"gte=0"`
	RadioCassette    string        `json:"radio_cassette"     validate:"required"` // "yes"/"no" or a value
	WindscreenCover  string        `json:"windscreen_cover"   validate:"required"` // "yes"/"no" or a value
	TL               float64       `json:"tl"                 validate:"gte=0"`    // training levy
	SD               float64       `json:"sd"                 validate:"gte=0"`    // stamp duty

	ClassOfInsurance  string `json:"class_of_insurance"  validate:"required"`
	PolicyNumber      string `json:"policy_number"       validate:"required"`
	NameOfInsured     string `json:"name_of_insured"     validate:"required"`
	Occupation        string `json:"occupation"          validate:"required"`
	PINNumber         string `json:"pin_number"          validate:"required"`
	VehicleCovered    string `json:"vehicle_covered"     validate:"required"` // registration, e.g. "KAA 123A"
	EngineNo          string `json:"engine_no"           validate:"required"`
	Chasis            string `json:"chasis"              validate:"required"`
	SittingCapacity   string `json:"sitting_capacity"    validate:"required"`
	Color             string `json:"color"               validate:"required"`
	PeriodOfInsurance string `json:"period_of_insurance" validate:"required"` // e.g. "01/01/2025 to 31/12/2025"
	TermsOfPayment    string `json:"terms_of_payment"    validate:"required"`

	// GeneratedBy is optional; nil means "not provided".
	GeneratedBy *string `json:"generated_by,omitempty"`
}

// DefaultRecord returns the record a new form session starts with.
func DefaultRecord() PolicyRecord {
	return PolicyRecord{BasicPremiumRate: DefaultBasicPremiumRate}
}

// HasGeneratedBy reports whether the optional author field is present and non-empty.
func (r PolicyRecord) HasGeneratedBy() bool {
	return r.GeneratedBy != nil && *r.GeneratedBy != ""
}

// Clone returns a copy that shares no pointers with r.
func (r PolicyRecord) Clone() PolicyRecord {
	out := r
	if r.GeneratedBy != nil {
		v := *r.GeneratedBy
		out.GeneratedBy = &v
	}
	return out
}

// Text returns the string value of a text field, or "" for unknown names.
func (r PolicyRecord) Text(name string) string {
	switch name {
	case FieldInsuranceType:
		return string(r.InsuranceType)
	case FieldRadioCassette:
		return r.RadioCassette
	case FieldWindscreenCover:
		return r.WindscreenCover
	case FieldClassOfInsurance:
		return r.ClassOfInsurance
	case FieldPolicyNumber:
		return r.PolicyNumber
	case FieldNameOfInsured:
		return r.NameOfInsured
	case FieldOccupation:
		return r.Occupation
	case FieldPINNumber:
		return r.PINNumber
	case FieldVehicleCovered:
		return r.VehicleCovered
	case FieldEngineNo:
		return r.EngineNo
	case FieldChasis:
		return r.Chasis
	case FieldSittingCapacity:
		return r.SittingCapacity
	case FieldColor:
		return r.Color
	case FieldPeriodOfInsurance:
		return r.PeriodOfInsurance
	case FieldTermsOfPayment:
		return r.TermsOfPayment
	case FieldGeneratedBy:
		if r.GeneratedBy == nil {
			return ""
		}
		return *r.GeneratedBy
	}
	return ""
}

// Number returns the value of a numeric field, or 0 for unknown names.
func (r PolicyRecord) Number(name string) float64 {
	switch name {
	case FieldSumInsured:
		return r.SumInsured
	case FieldBasicPremiumRate:
		return r.BasicPremiumRate
	case FieldExcessProtector:
		return r.ExcessProtector
	case FieldTL:
		return r.TL
	case FieldSD:
		return r.SD
	}
	return 0
}
