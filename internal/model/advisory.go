package model

// AdvisoryItemType is the item type tag for advisories
const AdvisoryItemType = "advisory"

// AdvisorySeverity represents an advisory severity level
type AdvisorySeverity string

const (
	SeverityLow      AdvisorySeverity = "low"
	SeverityMedium   AdvisorySeverity = "medium"
	SeverityHigh     AdvisorySeverity = "high"
	SeverityCritical AdvisorySeverity = "critical"
)

// AdvisoryState represents an advisory lifecycle state
type AdvisoryState string

const (
	AdvisoryActive    AdvisoryState = "active"
	AdvisoryInactive  AdvisoryState = "inactive"
	AdvisoryPending   AdvisoryState = "pending"
	AdvisoryExpired   AdvisoryState = "expired"
	AdvisoryCancelled AdvisoryState = "cancelled"
)

// Advisory is a water-quality advisory for one or more sample sites
type Advisory struct {
	BaseItem
	Title         string
	Description   string
	Severity      AdvisorySeverity
	State         AdvisoryState
	AffectedAreas []string
}

// NewAdvisory creates an active advisory
func NewAdvisory(id, title, description string, severity AdvisorySeverity, source string, areas []string) *Advisory {
	return &Advisory{
		BaseItem:      NewBaseItem(id, AdvisoryItemType, source),
		Title:         title,
		Description:   description,
		Severity:      severity,
		State:         AdvisoryActive,
		AffectedAreas: areas,
	}
}

// Validate checks the advisory for completeness
func (a *Advisory) Validate() bool {
	return a.Title != "" && a.Description != "" && a.Severity != "" && a.Source() != ""
}

// IsCritical reports whether the advisory is critical severity
func (a *Advisory) IsCritical() bool {
	return a.Severity == SeverityCritical
}

// IsActive reports whether the advisory is in the active state
func (a *Advisory) IsActive() bool {
	return a.State == AdvisoryActive
}

// ToMap converts the advisory to a map representation
func (a *Advisory) ToMap() map[string]any {
	m := a.baseMap()
	m["title"] = a.Title
	m["description"] = a.Description
	m["severity"] = string(a.Severity)
	m["state"] = string(a.State)
	m["affected_areas"] = a.AffectedAreas
	return m
}
