package controls

import "strings"

const (
	RefSuffix = "_ref"

	FieldID                     = "ccf_id"
	FieldDomain                 = "control_domain"
	FieldName                   = "control_name"
	FieldDescription            = "control_description"
	FieldImplementationGuidance = "implementation_guidance"
	FieldTestingProcedure       = "testing_procedure"
	FieldTheme                  = "control_theme"
	FieldType                   = "control_type"
	FieldPolicyStandard         = "policy_standard"
	FieldAuditArtifacts         = "audit_artifacts"
)

var (
	// RequiredGuidanceFields must be present on every guidance record.
	RequiredGuidanceFields = []string{FieldID, FieldDomain, FieldName, FieldDescription, FieldPolicyStandard}

	// TextFields are cleaned (quotes, whitespace) at the load boundary.
	TextFields = []string{FieldDescription, FieldImplementationGuidance, FieldTestingProcedure, FieldName}
)

// Indicator is the tri-state value of a framework applicability column. A
// framework missing from Control.Indicators is unknown.
type Indicator string

const (
	IndicatorPresent Indicator = "X"
	IndicatorAbsent  Indicator = ""
)

func ParseIndicator(raw string) Indicator {
	if strings.EqualFold(strings.TrimSpace(raw), string(IndicatorPresent)) {
		return IndicatorPresent
	}
	return IndicatorAbsent
}

func IsRefField(name string) bool {
	return strings.HasSuffix(name, RefSuffix) && len(name) > len(RefSuffix)
}

func RefField(framework string) string {
	return framework + RefSuffix
}

func FrameworkFromRefField(name string) string {
	return strings.TrimSuffix(name, RefSuffix)
}
