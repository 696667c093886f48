package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/rolloff-rates/internal/dto"
	"github.com/octobees/rolloff-rates/internal/entity"
	"github.com/octobees/rolloff-rates/internal/repository"
)

// ErrLeadNotFound mirrors the repository error for handler mapping.
var ErrLeadNotFound = repository.ErrLeadNotFound

// LeadValidationError lists what is wrong with a submission. Missing holds
// required fields that were blank, in the order name, email, phone.
type LeadValidationError struct {
	Missing []string
	Invalid []string
}

func (e *LeadValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// LeadService validates, stores and announces quote requests.
type LeadService struct {
	leads    repository.LeadsRepository
	notifier Notifier
	region   string
}

// NewLeadService wires the lead flow. A nil notifier logs instead of mailing.
func NewLeadService(leads repository.LeadsRepository, notifier Notifier, phoneRegion string) *LeadService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	region := strings.ToUpper(strings.TrimSpace(phoneRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &LeadService{leads: leads, notifier: notifier, region: region}
}

// Submit validates the form, persists the lead and notifies the operator.
// Validation problems are returned as *LeadValidationError.
func (s *LeadService) Submit(ctx context.Context, req dto.LeadRequest) (*entity.Lead, error) {
	lead, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("save lead: %w", err)
	}

	if err := s.notifier.NotifyLead(ctx, *lead); err != nil {
		log.Printf("lead notification failed lead_id=%s err=%v", lead.ID, err)
	}
	return lead, nil
}

// List returns stored leads for the admin listing.
func (s *LeadService) List(ctx context.Context, filter dto.LeadListFilter) ([]entity.Lead, error) {
	leads, err := s.leads.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return leads, nil
}

// Get returns a single lead.
func (s *LeadService) Get(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	lead, err := s.leads.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return lead, nil
}

func (s *LeadService) validate(req dto.LeadRequest) (*entity.Lead, error) {
	lead := &entity.Lead{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
		State:   strings.TrimSpace(req.State),
		Size:    strings.TrimSpace(req.Size),
		Message: strings.TrimSpace(req.Message),
	}

	verr := &LeadValidationError{}
	if lead.Name == "" {
		verr.Missing = append(verr.Missing, "name")
	}
	if lead.Email == "" {
		verr.Missing = append(verr.Missing, "email")
	} else if email := normalizeEmail(lead.Email); email == "" {
		verr.Invalid = append(verr.Invalid, "email")
	} else {
		lead.Email = email
	}
	if lead.Phone == "" {
		verr.Missing = append(verr.Missing, "phone")
	} else if phone := normalizePhone(lead.Phone, s.region); phone == "" {
		verr.Invalid = append(verr.Invalid, "phone")
	} else {
		lead.Phone = phone
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return nil, verr
	}
	return lead, nil
}
