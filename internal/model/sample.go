package model

import "time"

// SampleItemType is the item type tag for water-quality sample readings
const SampleItemType = "sample"

// SampleReading is a single measured value from a monitoring site
type SampleReading struct {
	BaseItem
	Site      string
	Parameter string
	Value     float64
	Units     string
	SampledAt time.Time
}

// NewSampleReading creates a sample reading item
func NewSampleReading(id, site, parameter string, value float64, units, source string, sampledAt time.Time) *SampleReading {
	return &SampleReading{
		BaseItem:  NewBaseItem(id, SampleItemType, source),
		Site:      site,
		Parameter: parameter,
		Value:     value,
		Units:     units,
		SampledAt: sampledAt,
	}
}

// Validate checks the reading for completeness
func (s *SampleReading) Validate() bool {
	return s.Site != "" && s.Parameter != "" && s.Source() != "" && !s.SampledAt.IsZero()
}

// ToMap converts the reading to a map representation
func (s *SampleReading) ToMap() map[string]any {
	m := s.baseMap()
	m["site"] = s.Site
	m["parameter"] = s.Parameter
	m["value"] = s.Value
	m["units"] = s.Units
	m["sampled_at"] = s.SampledAt.Format(time.RFC3339)
	return m
}
