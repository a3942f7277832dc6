package errors

import (
	"fmt"
	"strings"
)

// Violation codes shared by every validator in the system. Transport clients
// key on these, so they are part of the public contract and must stay stable.
const (
	CodeMissing          = "MISSING"
	CodeExceedsMaxLength = "EXCEEDS_MAX_LENGTH"
	CodeInconsistent     = "INCONSISTENT"
	CodeInThePast        = "IN_THE_PAST"
	CodeExceedsDuration  = "EXCEEDS_DURATION"
	CodeOverlaps         = "OVERLAPS"
	CodeDuplicated       = "DUPLICATED"
	CodeBelowMinValue    = "BELOW_MIN_VALUE"
	CodeAboveMaxValue    = "ABOVE_MAX_VALUE"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Code)
}

// Violations is an ordered, append-only collection of field violations
// accumulated over one validation pass. Insertion order is preserved so the
// first failing field is reported first.
type Violations []Violation

func (v *Violations) Add(field, code string) {
	*v = append(*v, Violation{Field: field, Code: code})
}

func (v Violations) HasErrors() bool {
	return len(v) > 0
}

func (v Violations) Get(i int) Violation {
	return v[i]
}

func (v Violations) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, violation := range v {
		messages = append(messages, violation.Error())
	}
	return fmt.Sprintf("validation failed: %d violation(s): [%s]", len(v), strings.Join(messages, "; "))
}
