package dto

// ValidateViolationRequest toggles rules for one validation call. Nil rule
// toggles default to enabled; a nil strict flag defaults to lenient.
type ValidateViolationRequest struct {
	CheckGroupClosure     *bool `json:"check_group_closure"`
	CheckSLABreach        *bool `json:"check_sla_breach"`
	CheckViolationMarking *bool `json:"check_violation_marking"`
	StrictValidation      *bool `json:"strict_validation"`
}
