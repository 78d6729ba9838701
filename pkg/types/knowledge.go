// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Metadata keys attached to every stored fragment.
const (
	MetaTopic  = "topic"
	MetaSource = "source"
)

// Default labels applied when the caller leaves topic or source blank.
const (
	DefaultTopic  = "General"
	DefaultSource = "manual"
)

// Metadata is the key/value payload stored next to a fragment's vector.
// Only string values are persisted.
type Metadata map[string]string

// Fragment is one stored unit of knowledge text. Fragments are immutable
// once written; the ID is assigned at creation and is unique in the store.
type Fragment struct {
	// ID is a random UUID assigned by the knowledge store.
	ID string `json:"id" yaml:"id"`

	// Text is the non-empty fragment content.
	Text string `json:"text" yaml:"text"`

	// Topic is the single label used as a search partition.
	Topic string `json:"topic" yaml:"topic"`

	// Source records where the text came from (a file name or "manual").
	Source string `json:"source" yaml:"source"`
}

// Metadata returns the metadata record persisted for the fragment.
func (f Fragment) Metadata() Metadata {
	return Metadata{MetaTopic: f.Topic, MetaSource: f.Source}
}
