// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Placeholder identity used when a paper has no structured authors.
const (
	PlaceholderFirstName = "AI"
	PlaceholderLastName  = "Helper"
)

// ItemTypeJournalArticle is the reference-manager item type for saved papers.
const ItemTypeJournalArticle = "journalArticle"

// ReferenceItem is the reference-manager representation of a saved
// Paper and its Analysis. Field names follow the Zotero item schema.
type ReferenceItem struct {
	ItemType     string    `json:"itemType"`
	Title        string    `json:"title"`
	AbstractNote string    `json:"abstractNote"`
	URL          string    `json:"url"`
	DOI          string    `json:"DOI,omitempty"`
	Tags         []Tag     `json:"tags"`
	Creators     []Creator `json:"creators"`
	Collections  []string  `json:"collections,omitempty"`
}

// Tag is a single reference-manager tag.
type Tag struct {
	Tag string `json:"tag"`
}

// Creator is an author entry on a reference item.
type Creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

// SaveStatus reports what the reference sink did with a paper.
type SaveStatus string

const (
	SaveCreated   SaveStatus = "created"
	SaveDuplicate SaveStatus = "duplicate"
	SaveFailed    SaveStatus = "failed"
)

// SaveOutcome is the structured result of one reference sink call.
type SaveOutcome struct {
	Status SaveStatus `json:"status" yaml:"status"`

	// Key is the reference-manager key of the created item, if any.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	// Message explains a duplicate or failure.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Saved reports whether a new item was created.
func (o SaveOutcome) Saved() bool { return o.Status == SaveCreated }
