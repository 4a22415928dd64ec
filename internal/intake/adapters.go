package intake

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/domain"
)

type attachmentPayload struct {
	FileName    string `json:"filename"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

func (a attachmentPayload) reference() domain.AttachmentReference {
	return domain.AttachmentReference{
		FileName:    a.FileName,
		Path:        a.Path,
		SizeBytes:   a.Size,
		ContentType: orDefault(a.ContentType, domain.DefaultMimeType),
	}
}

func decode(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// WebFormAdapter handles the self-service portal form.
type WebFormAdapter struct{}

type webFormPayload struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	UserID      string              `json:"user_id"`
	Email       string              `json:"email"`
	Name        string              `json:"name"`
	Location    string              `json:"location"`
	AssetTag    string              `json:"asset_tag"`
	Category    string              `json:"category"`
	Attachments []attachmentPayload `json:"attachments"`
}

func (WebFormAdapter) Source() domain.Source { return domain.SourceWebForm }

func (WebFormAdapter) Normalize(raw []byte) (domain.TicketIntake, error) {
	var p webFormPayload
	if err := decode(raw, &p); err != nil {
		return domain.TicketIntake{}, err
	}
	in := domain.TicketIntake{
		Title:            p.Title,
		Body:             p.Description,
		RequesterID:      p.UserID,
		RequesterEmail:   p.Email,
		RequesterName:    p.Name,
		Location:         strings.TrimSpace(p.Location),
		AssetTag:         strings.TrimSpace(p.AssetTag),
		ExternalCategory: mapExternalCategory(p.Category),
	}
	for _, att := range p.Attachments {
		in.Attachments = append(in.Attachments, att.reference())
	}
	return finalize(in)
}

// EmailAdapter handles inbound mail already fetched by the mail poller.
type EmailAdapter struct{}

type emailPayload struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	MessageID string `json:"message_id"`
	From      struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"from"`
	Attachments []attachmentPayload `json:"attachments"`
}

func (EmailAdapter) Source() domain.Source { return domain.SourceEmail }

func (EmailAdapter) Normalize(raw []byte) (domain.TicketIntake, error) {
	var p emailPayload
	if err := decode(raw, &p); err != nil {
		return domain.TicketIntake{}, err
	}
	in := domain.TicketIntake{
		Title:           p.Subject,
		Body:            p.Body,
		RequesterID:     p.From.Email,
		RequesterEmail:  p.From.Email,
		RequesterName:   p.From.Name,
		SourceReference: p.MessageID,
	}
	for _, att := range p.Attachments {
		in.Attachments = append(in.Attachments, att.reference())
	}
	return finalize(in)
}

// GLPIAdapter handles tickets pushed from the GLPI asset/ticketing system.
type GLPIAdapter struct {
	logger *zap.Logger
}

type glpiPayload struct {
	ID        looseString `json:"id"`
	Name      string      `json:"name"`
	Content   string      `json:"content"`
	Priority  looseString `json:"priority"`
	Recipient dropdownRef `json:"_users_id_recipient"`
	Category  dropdownRef `json:"itilcategories_id"`
	Documents []struct {
		FileName string `json:"filename"`
		FilePath string `json:"filepath"`
		FileSize int64  `json:"filesize"`
		Mime     string `json:"mime"`
	} `json:"documents"`
}

var glpiPriorities = map[int64]domain.Priority{
	1: domain.PriorityLow,
	2: domain.PriorityLow,
	3: domain.PriorityMedium,
	4: domain.PriorityHigh,
	5: domain.PriorityUrgent,
	6: domain.PriorityCritical,
}

func (GLPIAdapter) Source() domain.Source { return domain.SourceGLPI }

func (a GLPIAdapter) Normalize(raw []byte) (domain.TicketIntake, error) {
	var p glpiPayload
	if err := decode(raw, &p); err != nil {
		return domain.TicketIntake{}, err
	}
	in := domain.TicketIntake{
		Title:            p.Name,
		Body:             p.Content,
		RequesterID:      p.Recipient.ID.String(),
		RequesterEmail:   p.Recipient.Email.String(),
		RequesterName:    p.Recipient.Name.String(),
		SourceReference:  p.ID.String(),
		ExternalCategory: mapExternalCategory(p.Category.Name.String()),
	}
	priority, known := GLPIPriority(p.Priority.String())
	if !known && p.Priority != "" && a.logger != nil {
		a.logger.Info("unrecognized glpi priority, defaulting to medium", zap.String("priority", p.Priority.String()))
	}
	in.ExternalPriority = &priority
	for _, doc := range p.Documents {
		in.Attachments = append(in.Attachments, domain.AttachmentReference{
			FileName:    doc.FileName,
			Path:        doc.FilePath,
			SizeBytes:   doc.FileSize,
			ContentType: orDefault(doc.Mime, domain.DefaultMimeType),
		})
	}
	return finalize(in)
}

// GLPIPriority maps GLPI's numeric 1..6 scale; anything else is Medium.
func GLPIPriority(raw string) (domain.Priority, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return domain.PriorityMedium, false
	}
	p, ok := glpiPriorities[n]
	if !ok {
		return domain.PriorityMedium, false
	}
	return p, true
}

// SolmanAdapter handles incidents forwarded from SAP Solution Manager.
type SolmanAdapter struct {
	logger *zap.Logger
}

type solmanPayload struct {
	IncidentID    string `json:"IncidentID"`
	ShortText     string `json:"ShortText"`
	Description   string `json:"Description"`
	Priority      string `json:"Priority"`
	ReporterID    string `json:"ReporterID"`
	ReporterEmail string `json:"ReporterEmail"`
	ReporterName  string `json:"ReporterName"`
	Category      string `json:"Category"`
	Attachments   []struct {
		FileName    string `json:"FileName"`
		FilePath    string `json:"FilePath"`
		FileSize    int64  `json:"FileSize"`
		ContentType string `json:"ContentType"`
	} `json:"Attachments"`
}

var solmanPriorities = map[string]domain.Priority{
	"very high": domain.PriorityCritical,
	"high":      domain.PriorityHigh,
	"medium":    domain.PriorityMedium,
	"low":       domain.PriorityLow,
	"very low":  domain.PriorityLow,
}

func (SolmanAdapter) Source() domain.Source { return domain.SourceSolman }

func (a SolmanAdapter) Normalize(raw []byte) (domain.TicketIntake, error) {
	var p solmanPayload
	if err := decode(raw, &p); err != nil {
		return domain.TicketIntake{}, err
	}
	in := domain.TicketIntake{
		Title:            p.ShortText,
		Body:             p.Description,
		RequesterID:      p.ReporterID,
		RequesterEmail:   p.ReporterEmail,
		RequesterName:    p.ReporterName,
		SourceReference:  p.IncidentID,
		ExternalCategory: mapExternalCategory(p.Category),
	}
	priority, known := SolmanPriority(p.Priority)
	if !known && p.Priority != "" && a.logger != nil {
		a.logger.Info("unrecognized solman priority, defaulting to medium", zap.String("priority", p.Priority))
	}
	in.ExternalPriority = &priority
	for _, att := range p.Attachments {
		in.Attachments = append(in.Attachments, domain.AttachmentReference{
			FileName:    att.FileName,
			Path:        att.FilePath,
			SizeBytes:   att.FileSize,
			ContentType: orDefault(att.ContentType, domain.DefaultMimeType),
		})
	}
	return finalize(in)
}

// SolmanPriority maps Solman's textual priorities; unknown values are Medium.
func SolmanPriority(raw string) (domain.Priority, bool) {
	p, ok := solmanPriorities[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return domain.PriorityMedium, false
	}
	return p, true
}

// ChatAdapter handles messages typed into the support chatbot.
type ChatAdapter struct{}

type chatPayload struct {
	Message   string            `json:"message"`
	UserID    string            `json:"user_id"`
	UserName  string            `json:"user_name"`
	UserEmail string            `json:"user_email"`
	Context   ContextValues     `json:"context"`
}

func (ChatAdapter) Source() domain.Source { return domain.SourceChat }

func (ChatAdapter) Normalize(raw []byte) (domain.TicketIntake, error) {
	var p chatPayload
	if err := decode(raw, &p); err != nil {
		return domain.TicketIntake{}, err
	}
	return finalize(domain.TicketIntake{
		Title:          truncate(strings.TrimSpace(p.Message), 100),
		Body:           p.Message,
		RequesterID:    p.UserID,
		RequesterEmail: p.UserEmail,
		RequesterName:  p.UserName,
		Location:       p.Context["location"],
		Context:        p.Context,
	})
}
