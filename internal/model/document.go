package model

// Section levels. A heading renders at the larger font tier unless the
// descriptor overrides the size explicitly.
const (
	LevelHeading = "heading"
	LevelBody    = "body"
)

// Section is one ordered block of the output document. Sections have no
// identity beyond their position; they are consumed once during rendering.
type Section struct {
	Level      string `json:"level"`
	Text       string `json:"text"`
	Indent     int    `json:"indent,omitempty"`
	FontSize   int    `json:"fontSize,omitempty"`
	BreakAfter bool   `json:"breakAfter,omitempty"`
}

// Document is the full input to the document pipeline.
type Document struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	Links    []string  `json:"links,omitempty"`
}
