// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

// Database is the subset of a Notion database object the pipeline reads.
type Database struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

// Property is a database property schema entry.
type Property struct {
	ID     string        `json:"id,omitempty"`
	Name   string        `json:"name,omitempty"`
	Type   string        `json:"type"`
	Select *SelectSchema `json:"select,omitempty"`
}

// SelectSchema holds the allowed options of a select property.
type SelectSchema struct {
	Options []SelectOption `json:"options"`
}

// SelectOption is one allowed select value.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// UpdateDatabaseRequest is the PATCH /v1/databases/{id} body.
type UpdateDatabaseRequest struct {
	Properties map[string]PropertyUpdate `json:"properties"`
}

// PropertyUpdate changes one property's schema.
type PropertyUpdate struct {
	Select *SelectSchema `json:"select,omitempty"`
}

// CreatePageRequest is the POST /v1/pages body.
type CreatePageRequest struct {
	Parent     Parent                   `json:"parent"`
	Properties map[string]PropertyValue `json:"properties"`
	Children   []Block                  `json:"children,omitempty"`
}

// Parent points a page at its database.
type Parent struct {
	DatabaseID string `json:"database_id"`
}

// PropertyValue is a page property value. Exactly one field is set.
type PropertyValue struct {
	Title  []RichText    `json:"title,omitempty"`
	Date   *DateValue    `json:"date,omitempty"`
	Select *SelectOption `json:"select,omitempty"`
}

// DateValue is a date property value in YYYY-MM-DD form.
type DateValue struct {
	Start string `json:"start"`
}

// RichText is a text run.
type RichText struct {
	Type string   `json:"type,omitempty"`
	Text TextBody `json:"text"`
}

// TextBody holds the literal content of a text run.
type TextBody struct {
	Content string `json:"content"`
}

// Block is a page body block. Type selects which payload is set.
type Block struct {
	Object    string          `json:"object"`
	Type      string          `json:"type"`
	Image     *ImageBlock     `json:"image,omitempty"`
	Paragraph *ParagraphBlock `json:"paragraph,omitempty"`
}

// ImageBlock embeds an externally hosted image.
type ImageBlock struct {
	Type     string       `json:"type"`
	External ExternalFile `json:"external"`
}

// ExternalFile is a URL-addressed file.
type ExternalFile struct {
	URL string `json:"url"`
}

// ParagraphBlock is a text paragraph.
type ParagraphBlock struct {
	RichText []RichText `json:"rich_text"`
}

// Page is the subset of a created page the pipeline keeps.
type Page struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	CreatedTime string `json:"created_time"`
}

type errorResponse struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func text(content string) RichText {
	return RichText{Type: "text", Text: TextBody{Content: content}}
}

func imageBlock(url string) Block {
	return Block{
		Object: "block",
		Type:   "image",
		Image:  &ImageBlock{Type: "external", External: ExternalFile{URL: url}},
	}
}
