package model

import (
	"encoding/json"
	"sync"
	"time"
)

// DataItem is the unit of data the engine moves between plugins
type DataItem interface {
	// ItemID returns the item's identifier, unique within a processing run
	ItemID() string

	// ItemType returns the item's category tag, used for output routing
	ItemType() string

	// Source returns the identifier of the origin that produced the item
	Source() string

	// CreatedAt returns the creation timestamp
	CreatedAt() time.Time

	// UpdatedAt returns the last mutation timestamp, never before CreatedAt
	UpdatedAt() time.Time

	// Metadata returns a copy of the item's metadata
	Metadata() map[string]any

	// Tags returns a copy of the item's tags
	Tags() []string

	// AddMetadata sets a metadata key and advances UpdatedAt
	AddMetadata(key string, value any)

	// AddTag adds a tag if not already present and advances UpdatedAt
	AddTag(tag string)

	// RemoveTag removes a tag if present and advances UpdatedAt
	RemoveTag(tag string)

	// HasTag reports whether the item carries the tag
	HasTag(tag string) bool

	// Validate checks the item for completeness
	Validate() bool

	// ToMap converts the item to a map representation
	ToMap() map[string]any
}

// BaseItem provides common functionality for all data items.
// Mutators are safe for concurrent use with readers, since output plugins
// may read an item while a later cycle mutates it.
type BaseItem struct {
	id        string
	itemType  string
	source    string
	createdAt time.Time
	updatedAt time.Time
	metadata  map[string]any
	tags      []string
	mu        sync.RWMutex
}

// NewBaseItem creates a new base item with both timestamps set to now
func NewBaseItem(id, itemType, source string) BaseItem {
	now := time.Now()
	return BaseItem{
		id:        id,
		itemType:  itemType,
		source:    source,
		createdAt: now,
		updatedAt: now,
		metadata:  make(map[string]any),
	}
}

// ItemID returns the item's identifier
func (b *BaseItem) ItemID() string {
	return b.id
}

// ItemType returns the item's category tag
func (b *BaseItem) ItemType() string {
	return b.itemType
}

// Source returns the identifier of the origin that produced the item
func (b *BaseItem) Source() string {
	return b.source
}

// CreatedAt returns the creation timestamp
func (b *BaseItem) CreatedAt() time.Time {
	return b.createdAt
}

// UpdatedAt returns the last mutation timestamp
func (b *BaseItem) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updatedAt
}

// Metadata returns a copy of the item's metadata
func (b *BaseItem) Metadata() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make(map[string]any, len(b.metadata))
	for k, v := range b.metadata {
		result[k] = v
	}
	return result
}

// Tags returns a copy of the item's tags
func (b *BaseItem) Tags() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.tags...)
}

// AddMetadata sets a metadata key and advances UpdatedAt
func (b *BaseItem) AddMetadata(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.metadata[key] = value
	b.touch()
}

// AddTag adds a tag if not already present and advances UpdatedAt
func (b *BaseItem) AddTag(tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range b.tags {
		if t == tag {
			return
		}
	}
	b.tags = append(b.tags, tag)
	b.touch()
}

// RemoveTag removes a tag if present and advances UpdatedAt
func (b *BaseItem) RemoveTag(tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, t := range b.tags {
		if t == tag {
			b.tags = append(b.tags[:i], b.tags[i+1:]...)
			b.touch()
			return
		}
	}
}

// HasTag reports whether the item carries the tag
func (b *BaseItem) HasTag(tag string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, t := range b.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Age returns how long ago the item was created
func (b *BaseItem) Age() time.Duration {
	return time.Since(b.createdAt)
}

// touch advances updatedAt; callers hold the write lock
func (b *BaseItem) touch() {
	now := time.Now()
	if now.Before(b.createdAt) {
		now = b.createdAt
	}
	b.updatedAt = now
}

// baseMap returns the shared fields for embedding in a concrete ToMap
func (b *BaseItem) baseMap() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	metadata := make(map[string]any, len(b.metadata))
	for k, v := range b.metadata {
		metadata[k] = v
	}

	return map[string]any{
		"item_id":    b.id,
		"item_type":  b.itemType,
		"source":     b.source,
		"created_at": b.createdAt.Format(time.RFC3339),
		"updated_at": b.updatedAt.Format(time.RFC3339),
		"metadata":   metadata,
		"tags":       append([]string(nil), b.tags...),
	}
}

// ItemJSON converts a data item to an indented JSON document
func ItemJSON(item DataItem) ([]byte, error) {
	return json.MarshalIndent(item.ToMap(), "", "  ")
}
