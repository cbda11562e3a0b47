package templates

const standardContent = `# ${policy_standard}

## Document Control
- **Version:** ${version}
- **Last Updated:** ${current_date}
- **Classification:** ${classification}

## Purpose
This policy defines requirements for ${policy_standard_lower}.

## Scope
This policy applies to all systems and data.

## Policy Requirements

${control_sections}

## Crosswalk: Common Controls to External Frameworks
| **Control ID** | **Framework** | **Reference** |
|:----------|:----------|:---------|
${framework_references}

## Crosswalk: External Frameworks to Common Controls
| **Framework** | **Reference** | **Controls** |
|:----------|:----------|:---------|
${reverse_framework_references}
`

const detailedContent = `# ${policy_standard}

## Document Control
- **Version:** ${version}
- **Last Updated:** ${current_date}
- **Classification:** ${classification}
- **Owner:** ${owner}
- **Next Review Date:** ${next_review_date}

## Executive Summary
This document outlines the comprehensive requirements for ${policy_standard_lower}. The policy is designed to ensure consistent and secure practices across the organization.

## Purpose and Objectives
This policy defines requirements for ${policy_standard_lower} with the following objectives:
1. Establish clear governance and accountability
2. Ensure regulatory compliance
3. Protect organizational assets and data
4. Enable secure business operations

## Scope
This policy applies to:
- All employees and contractors
- All systems and data
- Third-party service providers
- Business partners with access to systems

## Definitions and Terminology
| **Term** | **Definition** |
|:---------|:--------------|
| Control | A measure designed to provide reasonable assurance regarding the achievement of objectives |
| Policy | A formal statement of rules and requirements that must be met |
| Standard | A mandatory requirement that supports policies |
| Procedure | A documented method to implement policies and standards |

## Policy Requirements

${control_sections}

## Crosswalk: Common Controls to External Frameworks
| **Control ID** | **Framework** | **Reference** |
|:----------|:----------|:---------|
${framework_references}

## Crosswalk: External Frameworks to Common Controls
| **Framework** | **Reference** | **Controls** |
|:----------|:----------|:---------|
${reverse_framework_references}

## Compliance and Monitoring
### Compliance Measurement
- Regular assessments will be conducted to ensure compliance
- Automated monitoring tools will be used where applicable
- Quarterly compliance reports will be generated

### Non-Compliance
Violations of this policy may result in:
1. Disciplinary action
2. Termination of employment
3. Legal action if warranted

## Review and Updates
- This policy will be reviewed annually
- Updates will be made in response to:
  - Changes in business requirements
  - New security threats
  - Regulatory changes
  - Lessons learned from incidents

## Document History
| **Version** | **Date** | **Changes** | **Approved By** |
|:------------|:---------|:------------|:----------------|
| ${version} | ${current_date} | Initial Release | ${owner} |
`

func builtIns() []Template {
	return []Template{
		{
			ID:          "standard",
			Name:        "Standard Policy Template",
			Description: "Default template with standard policy sections",
			Content:     standardContent,
			BuiltIn:     true,
		},
		{
			ID:          "detailed",
			Name:        "Detailed Policy Template",
			Description: "Extended template with additional sections",
			Content:     detailedContent,
			BuiltIn:     true,
		},
	}
}

// IsBuiltIn reports whether an id is reserved by a built-in template.
func IsBuiltIn(id string) bool {
	for _, t := range builtIns() {
		if t.ID == id {
			return true
		}
	}
	return false
}
