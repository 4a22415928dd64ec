// Package intake turns raw per-channel payloads into canonical ticket intakes.
package intake

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/domain"
)

var (
	// ErrEmptyBody is returned when a payload carries no request text.
	ErrEmptyBody = errors.New("intake body is empty")
	// ErrMalformedPayload is returned when the payload cannot be decoded.
	ErrMalformedPayload = errors.New("malformed intake payload")
	// ErrUnknownSource is returned for an unsupported source tag.
	ErrUnknownSource = errors.New("unknown intake source")
)

// Normalizer maps one source's raw payload into a TicketIntake.
type Normalizer interface {
	Source() domain.Source
	Normalize(raw []byte) (domain.TicketIntake, error)
}

// Registry holds one adapter per source variant.
type Registry struct {
	webForm Normalizer
	email   Normalizer
	glpi    Normalizer
	solman  Normalizer
	chat    Normalizer
	logger  *zap.Logger
}

// NewRegistry wires the built-in adapters.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("intake")
	return &Registry{
		webForm: WebFormAdapter{},
		email:   EmailAdapter{},
		glpi:    GLPIAdapter{logger: logger},
		solman:  SolmanAdapter{logger: logger},
		chat:    ChatAdapter{},
		logger:  logger,
	}
}

// Normalize dispatches raw to the adapter for source.
func (r *Registry) Normalize(source domain.Source, raw []byte) (domain.TicketIntake, error) {
	var adapter Normalizer
	switch source {
	case domain.SourceWebForm:
		adapter = r.webForm
	case domain.SourceEmail:
		adapter = r.email
	case domain.SourceGLPI:
		adapter = r.glpi
	case domain.SourceSolman:
		adapter = r.solman
	case domain.SourceChat:
		adapter = r.chat
	default:
		return domain.TicketIntake{}, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	intake, err := adapter.Normalize(raw)
	if err != nil {
		return domain.TicketIntake{}, err
	}
	intake.Source = source
	if intake.ExternalCategory != nil && *intake.ExternalCategory == domain.CategoryOther {
		r.logger.Debug("external category unmapped", zap.String("source", string(source)), zap.String("reference", intake.SourceReference))
	}
	return intake, nil
}

func finalize(in domain.TicketIntake) (domain.TicketIntake, error) {
	in.Body = strings.TrimSpace(in.Body)
	if in.Body == "" {
		return domain.TicketIntake{}, ErrEmptyBody
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = truncate(in.Body, 100)
	}
	in.RequesterName = orDefault(in.RequesterName, domain.UnknownUserName)
	in.RequesterEmail = orDefault(in.RequesterEmail, domain.UnknownUserEmail)
	in.RequesterID = orDefault(in.RequesterID, domain.UnknownUserID)
	if in.Attachments == nil {
		in.Attachments = []domain.AttachmentReference{}
	}
	return in, nil
}

func mapExternalCategory(external string) *domain.Category {
	if strings.TrimSpace(external) == "" {
		return nil
	}
	category, _ := MapCategory(external)
	return &category
}

func orDefault(val, fallback string) string {
	if trimmed := strings.TrimSpace(val); trimmed != "" {
		return trimmed
	}
	return fallback
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
