package models

type ContentType string

const (
	ContentTypePlain    ContentType = "plain"
	ContentTypeRichText ContentType = "richtext"
)

type Note struct {
	Record
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	ContentType ContentType `json:"content_type"`
	Draft       bool        `json:"is_draft"`
	NotebookID  *string     `json:"notebook_id,omitempty"`
	Category    string      `json:"category"`
	Color       string      `json:"color"`
	Pinned      bool        `json:"is_pinned"`
	Archived    bool        `json:"is_archived"`
}

// NotePatch is a partial update; nil fields are left untouched.
type NotePatch struct {
	Title       *string
	Content     *string
	ContentType *ContentType
	Draft       *bool
	NotebookID  *string
	Category    *string
	Color       *string
	Pinned      *bool
	Archived    *bool
}
