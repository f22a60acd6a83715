// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DraftStatus is the value written to the workspace Status property.
type DraftStatus string

// StatusDraft marks a page that still needs human review.
const StatusDraft DraftStatus = "Draft"

// DraftRecord is a published draft as kept in the local archive.
type DraftRecord struct {
	// ID is a stable identifier assigned when the draft is archived.
	ID string `json:"id" yaml:"id"`

	// Bucket and Topic identify the ledger entry the draft consumed.
	Bucket string `json:"bucket" yaml:"bucket"`
	Topic  string `json:"topic" yaml:"topic"`

	// PageID is the workspace page created for the draft.
	PageID string `json:"page_id" yaml:"page_id"`

	// PageURL links to the page, when the API returned one.
	PageURL string `json:"page_url,omitempty" yaml:"page_url,omitempty"`

	// Image is the image URL attached to the page, if any.
	Image string `json:"image,omitempty" yaml:"image,omitempty"`

	// Model is the language model that produced the text.
	Model string `json:"model" yaml:"model"`

	// Content is the draft text exactly as sent to the workspace.
	Content string `json:"content" yaml:"content"`

	// Words is the whitespace-delimited word count of Content.
	Words int `json:"words" yaml:"words"`

	// CreatedAt is when the page was created.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
