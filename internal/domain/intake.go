package domain

import "strings"

// Source identifies the channel an intake arrived from.
type Source string

const (
	SourceWebForm Source = "web_form"
	SourceEmail   Source = "email"
	SourceGLPI    Source = "glpi"
	SourceSolman  Source = "solman"
	SourceChat    Source = "chat"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceWebForm, SourceEmail, SourceGLPI, SourceSolman, SourceChat:
		return true
	}
	return false
}

// Sentinel requester values used when a source omits them.
const (
	UnknownUserName  = "Unknown User"
	UnknownUserEmail = "unknown@example.com"
	UnknownUserID    = "unknown"
	DefaultMimeType  = "application/octet-stream"
)

// AttachmentReference points at a file stored by the originating channel.
type AttachmentReference struct {
	FileName    string `json:"filename"`
	Path        string `json:"path"`
	SizeBytes   int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// TicketIntake is the canonical, source-independent support request.
type TicketIntake struct {
	Title            string                `json:"title"`
	Body             string                `json:"body"`
	RequesterID      string                `json:"requester_id"`
	RequesterEmail   string                `json:"requester_email"`
	RequesterName    string                `json:"requester_name"`
	Source           Source                `json:"source"`
	SourceReference  string                `json:"source_reference,omitempty"`
	Location         string                `json:"location,omitempty"`
	AssetTag         string                `json:"asset_tag,omitempty"`
	ExternalCategory *Category             `json:"external_category,omitempty"`
	ExternalPriority *Priority             `json:"external_priority,omitempty"`
	Attachments      []AttachmentReference `json:"attachments"`
	Context          map[string]string     `json:"context,omitempty"`
}

// Text returns the title and body joined for classification. A title that
// is a prefix of the body is not repeated.
func (t TicketIntake) Text() string {
	if t.Title == "" || strings.HasPrefix(t.Body, t.Title) {
		return t.Body
	}
	return t.Title + "\n" + t.Body
}
