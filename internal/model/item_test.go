package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseItem(t *testing.T) {
	item := NewBaseItem("item-1", "advisory", "test-source")

	t.Run("Accessors return construction values", func(t *testing.T) {
		assert.Equal(t, "item-1", item.ItemID())
		assert.Equal(t, "advisory", item.ItemType())
		assert.Equal(t, "test-source", item.Source())
	})

	t.Run("Timestamps start equal", func(t *testing.T) {
		assert.Equal(t, item.CreatedAt(), item.UpdatedAt())
	})

	t.Run("AddMetadata advances UpdatedAt", func(t *testing.T) {
		before := item.UpdatedAt()
		time.Sleep(5 * time.Millisecond)

		item.AddMetadata("station", "EB-04")

		assert.Equal(t, "EB-04", item.Metadata()["station"])
		assert.True(t, item.UpdatedAt().After(before))
		assert.False(t, item.UpdatedAt().Before(item.CreatedAt()))
	})

	t.Run("Tags have set semantics", func(t *testing.T) {
		item.AddTag("processed")
		item.AddTag("processed")
		item.AddTag("reviewed")

		assert.Equal(t, []string{"processed", "reviewed"}, item.Tags())
		assert.True(t, item.HasTag("processed"))
	})

	t.Run("RemoveTag drops the tag and advances UpdatedAt", func(t *testing.T) {
		before := item.UpdatedAt()
		time.Sleep(5 * time.Millisecond)

		item.RemoveTag("processed")

		assert.Equal(t, []string{"reviewed"}, item.Tags())
		assert.False(t, item.HasTag("processed"))
		assert.True(t, item.UpdatedAt().After(before))
	})

	t.Run("RemoveTag on an absent tag changes nothing", func(t *testing.T) {
		before := item.UpdatedAt()
		item.RemoveTag("missing")
		assert.Equal(t, before, item.UpdatedAt())
	})

	t.Run("Metadata returns a copy", func(t *testing.T) {
		m := item.Metadata()
		m["station"] = "mutated"
		assert.Equal(t, "EB-04", item.Metadata()["station"])
	})
}

func TestAdvisory(t *testing.T) {
	advisory := NewAdvisory("adv-1", "High bacteria levels", "Swimming not advised", SeverityHigh, "beach-monitor", []string{"East Beach"})

	t.Run("Implements DataItem", func(t *testing.T) {
		var _ DataItem = advisory
		assert.Equal(t, AdvisoryItemType, advisory.ItemType())
	})

	t.Run("Validate requires title, description, severity, source", func(t *testing.T) {
		assert.True(t, advisory.Validate())

		missing := NewAdvisory("adv-2", "", "desc", SeverityLow, "src", nil)
		assert.False(t, missing.Validate())
	})

	t.Run("State helpers", func(t *testing.T) {
		assert.True(t, advisory.IsActive())
		assert.False(t, advisory.IsCritical())

		critical := NewAdvisory("adv-3", "t", "d", SeverityCritical, "src", nil)
		assert.True(t, critical.IsCritical())
	})

	t.Run("ToMap includes base and advisory fields", func(t *testing.T) {
		advisory.AddTag("processed")
		m := advisory.ToMap()

		assert.Equal(t, "adv-1", m["item_id"])
		assert.Equal(t, AdvisoryItemType, m["item_type"])
		assert.Equal(t, "High bacteria levels", m["title"])
		assert.Equal(t, "high", m["severity"])
		assert.Equal(t, "active", m["state"])
		assert.Equal(t, []string{"East Beach"}, m["affected_areas"])
		assert.Equal(t, []string{"processed"}, m["tags"])
	})
}

func TestSampleReading(t *testing.T) {
	sampledAt := time.Date(2026, 7, 14, 8, 30, 0, 0, time.UTC)
	reading := NewSampleReading("s-1", "EB-04", "enterococcus", 104.5, "cfu/100ml", "lab-import", sampledAt)

	t.Run("Implements DataItem", func(t *testing.T) {
		var _ DataItem = reading
		assert.Equal(t, SampleItemType, reading.ItemType())
	})

	t.Run("Validate requires site, parameter, source, sample time", func(t *testing.T) {
		assert.True(t, reading.Validate())

		missing := NewSampleReading("s-2", "", "enterococcus", 1, "cfu/100ml", "lab-import", sampledAt)
		assert.False(t, missing.Validate())

		zeroTime := NewSampleReading("s-3", "EB-04", "enterococcus", 1, "cfu/100ml", "lab-import", time.Time{})
		assert.False(t, zeroTime.Validate())
	})

	t.Run("ToMap includes reading fields", func(t *testing.T) {
		m := reading.ToMap()
		assert.Equal(t, "EB-04", m["site"])
		assert.Equal(t, "enterococcus", m["parameter"])
		assert.Equal(t, 104.5, m["value"])
		assert.Equal(t, "2026-07-14T08:30:00Z", m["sampled_at"])
	})
}

func TestItemJSON(t *testing.T) {
	advisory := NewAdvisory("adv-1", "title", "desc", SeverityMedium, "src", nil)

	data, err := ItemJSON(advisory)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "adv-1", decoded["item_id"])
	assert.Equal(t, "medium", decoded["severity"])
}
