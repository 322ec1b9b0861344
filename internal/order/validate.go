package order

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// FieldProblem names one invalid or missing field, wire-name first so the
// caller can echo it straight back to the client.
type FieldProblem struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// NewValidator returns a configured validator with the custom rules the
// submission schema uses.
func NewValidator() *validatorv10.Validate {
	v := validatorv10.New()

	// name/region strings must still have content after trimming
	_ = v.RegisterValidation("trimmedmin2", func(fl validatorv10.FieldLevel) bool {
		return len(strings.TrimSpace(fl.Field().String())) >= 2
	})

	// phone must normalize to a local mobile number
	_ = v.RegisterValidation("dzphone", func(fl validatorv10.FieldLevel) bool {
		return ValidMobile(NormalizePhone(fl.Field().String()))
	})

	return v
}

// wire names per struct field, for translating validator errors back into
// the payload vocabulary.
var wireNames = map[string]string{
	"FullName":        "fullName",
	"Phone":           "phone",
	"WilayaNameAr":    "wilayaNameAr",
	"BaladiyaNameAr":  "baladiyaNameAr",
	"SelectedWatchID": "selectedWatchId",
	"DeliveryOption":  "deliveryOption",
	"Total":           "total",
}

var reasons = map[string]string{
	"required":    "مطلوب",
	"trimmedmin2": "حرفان على الأقل",
	"dzphone":     "رقم هاتف جزائري صحيح مطلوب (05, 06, أو 07)",
	"oneof":       "قيمة غير مسموحة",
	"gt":          "يجب أن يكون موجباً",
}

// Validate runs the full server-side check and returns the enumerated
// list of problems; empty means the submission is acceptable.
func Validate(v *validatorv10.Validate, s Submission) []FieldProblem {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		return []FieldProblem{{Field: "payload", Reason: err.Error()}}
	}

	problems := make([]FieldProblem, 0, len(ve))
	for _, fe := range ve {
		field := wireNames[fe.StructField()]
		if field == "" {
			field = fe.StructField()
		}
		reason := reasons[fe.Tag()]
		if reason == "" {
			reason = fe.Tag()
		}
		problems = append(problems, FieldProblem{Field: field, Reason: reason})
	}
	return problems
}

// MissingMinimal is the proxy's cheap completeness check: the four fields
// a human must have typed. Returns the wire names of the absent ones.
func MissingMinimal(s Submission) []string {
	var missing []string
	if strings.TrimSpace(s.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(s.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(s.WilayaNameAr) == "" {
		missing = append(missing, "wilayaNameAr")
	}
	if strings.TrimSpace(s.BaladiyaNameAr) == "" {
		missing = append(missing, "baladiyaNameAr")
	}
	return missing
}

// Normalize trims the free-text fields and canonicalizes the phone before
// anything downstream compares or stores them.
func Normalize(s Submission) Submission {
	s.FullName = strings.TrimSpace(s.FullName)
	s.Phone = NormalizePhone(s.Phone)
	s.WilayaNameAr = strings.TrimSpace(s.WilayaNameAr)
	s.BaladiyaNameAr = strings.TrimSpace(s.BaladiyaNameAr)
	s.Notes = strings.TrimSpace(s.Notes)
	return s
}
