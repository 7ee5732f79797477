package domain

import "context"

// BlockRepository defines the persistence interface for block aggregates.
// Storage must preserve the assignments array and the append-only
// transition history verbatim.
type BlockRepository interface {
	Save(ctx context.Context, block *Block) error
	FindByID(ctx context.Context, blockID string) (*Block, error)
	FindByStatus(ctx context.Context, status BlockStatus) ([]*Block, error)
	FindAll(ctx context.Context, limit, offset int) ([]*Block, error)
	Delete(ctx context.Context, blockID string) error
}

// TemplateRepository defines the persistence interface for task templates
type TemplateRepository interface {
	Save(ctx context.Context, template *TaskTemplate) error
	FindByID(ctx context.Context, templateID string) (*TaskTemplate, error)
	FindActive(ctx context.Context) ([]*TaskTemplate, error)
	FindAll(ctx context.Context, limit, offset int) ([]*TaskTemplate, error)
}

// EventPublisher publishes domain events to the surrounding platform
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	PublishAll(ctx context.Context, events []DomainEvent) error
}
