package application

import (
	"context"
	"fmt"

	"github.com/farmops-platform/block-service/internal/domain"
	"github.com/farmops-platform/block-service/pkg/errors"
	"github.com/farmops-platform/block-service/pkg/logging"
)

// TemplateApplicationService handles task template catalog use cases
type TemplateApplicationService struct {
	repo      domain.TemplateRepository
	publisher domain.EventPublisher
	logger    *logging.Logger
}

// NewTemplateApplicationService creates a new TemplateApplicationService
func NewTemplateApplicationService(
	repo domain.TemplateRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
) *TemplateApplicationService {
	return &TemplateApplicationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateTemplate registers a new template in draft status
func (s *TemplateApplicationService) CreateTemplate(ctx context.Context, cmd CreateTemplateCommand) (*TemplateDTO, error) {
	existing, err := s.repo.FindByID(ctx, cmd.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to check template: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("template %s already exists", cmd.TemplateID))
	}

	template, err := domain.NewTaskTemplate(cmd.TemplateID, cmd.Name, cmd.Category, cmd.Priority, cmd.EstimatedDurationMinutes)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	template.Triggers = cmd.Triggers
	template.Dependencies = cmd.Dependencies
	if cmd.Resources.Materials != nil || cmd.Resources.Equipment != nil {
		template.Resources = cmd.Resources
	}
	template.Cost = cmd.Cost
	template.RequiresApproval = cmd.RequiresApproval

	// Reject malformed cost formulas at the door rather than at tick time.
	if err := validateFormulas(template); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.repo.Save(ctx, template); err != nil {
		s.logger.WithError(err).Error("Failed to save template", "templateId", cmd.TemplateID)
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	s.logger.Info("Created template", "templateId", template.TemplateID, "category", template.Category)
	return ToTemplateDTO(template), nil
}

// GetTemplate retrieves a template by ID
func (s *TemplateApplicationService) GetTemplate(ctx context.Context, query GetTemplateQuery) (*TemplateDTO, error) {
	template, err := s.loadTemplate(ctx, query.TemplateID)
	if err != nil {
		return nil, err
	}
	return ToTemplateDTO(template), nil
}

// ListTemplates retrieves templates with pagination
func (s *TemplateApplicationService) ListTemplates(ctx context.Context, query ListTemplatesQuery) ([]*TemplateDTO, error) {
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	templates, err := s.repo.FindAll(ctx, limit, query.Offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list templates")
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return ToTemplateDTOs(templates), nil
}

// ActivateTemplate moves a draft template into rotation
func (s *TemplateApplicationService) ActivateTemplate(ctx context.Context, cmd ActivateTemplateCommand) (*TemplateDTO, error) {
	return s.mutateTemplate(ctx, cmd.TemplateID, func(t *domain.TaskTemplate) error {
		return t.Activate()
	})
}

// ApproveTemplate records approval on a template
func (s *TemplateApplicationService) ApproveTemplate(ctx context.Context, cmd ApproveTemplateCommand) (*TemplateDTO, error) {
	if cmd.Approver == "" {
		return nil, errors.ErrValidation("approver is required")
	}
	return s.mutateTemplate(ctx, cmd.TemplateID, func(t *domain.TaskTemplate) error {
		t.Approve(cmd.Approver)
		return nil
	})
}

// DeprecateTemplate retires an active template
func (s *TemplateApplicationService) DeprecateTemplate(ctx context.Context, cmd DeprecateTemplateCommand) (*TemplateDTO, error) {
	return s.mutateTemplate(ctx, cmd.TemplateID, func(t *domain.TaskTemplate) error {
		return t.Deprecate()
	})
}

// ArchiveTemplate archives a template
func (s *TemplateApplicationService) ArchiveTemplate(ctx context.Context, cmd ArchiveTemplateCommand) (*TemplateDTO, error) {
	return s.mutateTemplate(ctx, cmd.TemplateID, func(t *domain.TaskTemplate) error {
		t.Archive()
		return nil
	})
}

func (s *TemplateApplicationService) mutateTemplate(ctx context.Context, templateID string, fn func(*domain.TaskTemplate) error) (*TemplateDTO, error) {
	template, err := s.loadTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if err := fn(template); err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.repo.Save(ctx, template); err != nil {
		s.logger.WithError(err).Error("Failed to save template", "templateId", templateID)
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	events := template.GetDomainEvents()
	if len(events) > 0 {
		if err := s.publisher.PublishAll(ctx, events); err != nil {
			s.logger.WithError(err).Warn("Failed to publish template events", "templateId", templateID)
		}
		template.ClearDomainEvents()
	}

	return ToTemplateDTO(template), nil
}

func (s *TemplateApplicationService) loadTemplate(ctx context.Context, templateID string) (*domain.TaskTemplate, error) {
	template, err := s.repo.FindByID(ctx, templateID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get template", "templateId", templateID)
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if template == nil {
		return nil, errors.ErrNotFoundWithID("template", templateID)
	}
	return template, nil
}

// validateFormulas checks formula syntax with a zero-filled variable set so
// unknown-variable failures at creation time do not block legitimate
// catalog variables supplied per tick.
func validateFormulas(template *domain.TaskTemplate) error {
	formulas := map[string]string{
		"laborFormula":    template.Cost.LaborFormula,
		"materialFormula": template.Cost.MaterialFormula,
	}
	if template.Cost.EquipmentFormula != "" {
		formulas["equipmentFormula"] = template.Cost.EquipmentFormula
	}
	for name, m := range template.Resources.Materials {
		formulas["materials."+name] = m.QuantityFormula
	}

	for field, formula := range formulas {
		if formula == "" {
			continue
		}
		if err := domain.CheckFormulaSyntax(formula); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}
