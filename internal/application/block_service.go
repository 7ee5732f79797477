package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/farmops-platform/block-service/internal/domain"
	"github.com/farmops-platform/block-service/pkg/errors"
	"github.com/farmops-platform/block-service/pkg/logging"
)

// keyedMutex serializes mutating operations per block. Scheduling reads do
// not take these locks; they work on the snapshot the repository returns.
type keyedMutex struct {
	locks sync.Map
}

func (k *keyedMutex) lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// BlockApplicationService handles block lifecycle and capacity use cases
type BlockApplicationService struct {
	repo      domain.BlockRepository
	publisher domain.EventPublisher
	logger    *logging.Logger
	blockMu   keyedMutex
}

// NewBlockApplicationService creates a new BlockApplicationService
func NewBlockApplicationService(
	repo domain.BlockRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
) *BlockApplicationService {
	return &BlockApplicationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBlock registers a new growing block
func (s *BlockApplicationService) CreateBlock(ctx context.Context, cmd CreateBlockCommand) (*BlockDTO, error) {
	existing, err := s.repo.FindByID(ctx, cmd.BlockID)
	if err != nil {
		return nil, fmt.Errorf("failed to check block: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("block %s already exists", cmd.BlockID))
	}

	block, err := domain.NewBlock(cmd.BlockID, cmd.Name, cmd.FarmID, cmd.MaxCapacity)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.repo.Save(ctx, block); err != nil {
		s.logger.WithError(err).Error("Failed to save block", "blockId", cmd.BlockID)
		return nil, fmt.Errorf("failed to save block: %w", err)
	}

	s.publishEvents(ctx, block)

	s.logger.Info("Created block", "blockId", block.BlockID, "maxCapacity", block.MaxCapacity)
	return ToBlockDTO(block), nil
}

// GetBlock retrieves a block by ID
func (s *BlockApplicationService) GetBlock(ctx context.Context, query GetBlockQuery) (*BlockDTO, error) {
	block, err := s.loadBlock(ctx, query.BlockID)
	if err != nil {
		return nil, err
	}
	return ToBlockDTO(block), nil
}

// ListBlocks retrieves blocks with pagination
func (s *BlockApplicationService) ListBlocks(ctx context.Context, query ListBlocksQuery) ([]*BlockDTO, error) {
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	blocks, err := s.repo.FindAll(ctx, limit, query.Offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list blocks")
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}

	return ToBlockDTOs(blocks), nil
}

// GetBlocksByStatus retrieves blocks in a lifecycle status
func (s *BlockApplicationService) GetBlocksByStatus(ctx context.Context, query GetByStatusQuery) ([]*BlockDTO, error) {
	if !query.Status.IsValid() {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid block status: %s", query.Status))
	}

	blocks, err := s.repo.FindByStatus(ctx, query.Status)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get blocks by status", "status", query.Status)
		return nil, fmt.Errorf("failed to get blocks by status: %w", err)
	}

	return ToBlockDTOs(blocks), nil
}

// DeleteBlock removes a block. Only empty blocks without an open alert can
// be deleted; occupied blocks must be emptied first.
func (s *BlockApplicationService) DeleteBlock(ctx context.Context, cmd DeleteBlockCommand) error {
	unlock := s.blockMu.lock(cmd.BlockID)
	defer unlock()

	block, err := s.loadBlock(ctx, cmd.BlockID)
	if err != nil {
		return err
	}

	if !block.CanDelete() {
		return errors.ErrConflict(fmt.Sprintf("block %s is occupied and cannot be deleted", cmd.BlockID))
	}

	if err := s.repo.Delete(ctx, cmd.BlockID); err != nil {
		s.logger.WithError(err).Error("Failed to delete block", "blockId", cmd.BlockID)
		return fmt.Errorf("failed to delete block: %w", err)
	}

	s.logger.Info("Deleted block", "blockId", cmd.BlockID)
	return nil
}

// AssignPlants allocates capacity on a block to a plant type
func (s *BlockApplicationService) AssignPlants(ctx context.Context, cmd AssignPlantsCommand) (*BlockDTO, error) {
	return s.mutateBlock(ctx, cmd.BlockID, func(block *domain.Block) error {
		return block.AssignPlants(cmd.PlantTypeID, cmd.PlantName, cmd.Count)
	})
}

// RemovePlants releases previously assigned capacity
func (s *BlockApplicationService) RemovePlants(ctx context.Context, cmd RemovePlantsCommand) (*BlockDTO, error) {
	return s.mutateBlock(ctx, cmd.BlockID, func(block *domain.Block) error {
		return block.RemovePlants(cmd.PlantTypeID, cmd.Count)
	})
}

// ConfirmPlanting confirms physical planting and stamps harvest windows
func (s *BlockApplicationService) ConfirmPlanting(ctx context.Context, cmd ConfirmPlantingCommand) (*BlockDTO, error) {
	return s.mutateBlock(ctx, cmd.BlockID, func(block *domain.Block) error {
		return block.ConfirmPlanting(cmd.HarvestOffsets, cmd.Actor)
	})
}

// StartHarvest begins harvesting on a planted block
func (s *BlockApplicationService) StartHarvest(ctx context.Context, cmd StartHarvestCommand) (*BlockDTO, error) {
	return s.mutateBlock(ctx, cmd.BlockID, func(block *domain.Block) error {
		return block.StartHarvest(cmd.Actor)
	})
}

// OpenAlert opens an operational alert on a block
func (s *BlockApplicationService) OpenAlert(ctx context.Context, cmd OpenAlertCommand) (*BlockDTO, error) {
	return s.mutateBlock(ctx, cmd.BlockID, func(block *domain.Block) error {
		return block.OpenAlert(cmd.Kind, cmd.Severity, cmd.Description, cmd.Actor)
	})
}

// ResolveAlert resolves the open alert and restores the prior status
func (s *BlockApplicationService) ResolveAlert(ctx context.Context, cmd ResolveAlertCommand) (*BlockDTO, error) {
	return s.mutateBlock(ctx, cmd.BlockID, func(block *domain.Block) error {
		return block.ResolveAlert(cmd.Actor)
	})
}

// GetHistory retrieves the transition audit history of a block
func (s *BlockApplicationService) GetHistory(ctx context.Context, query GetHistoryQuery) ([]TransitionDTO, error) {
	block, err := s.loadBlock(ctx, query.BlockID)
	if err != nil {
		return nil, err
	}
	return ToTransitionDTOs(block.TransitionHistory), nil
}

// mutateBlock runs a domain mutation under the per-block lock, persists the
// result and publishes the events the aggregate recorded.
func (s *BlockApplicationService) mutateBlock(ctx context.Context, blockID string, fn func(*domain.Block) error) (*BlockDTO, error) {
	unlock := s.blockMu.lock(blockID)
	defer unlock()

	block, err := s.loadBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}

	if err := fn(block); err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.repo.Save(ctx, block); err != nil {
		s.logger.WithError(err).Error("Failed to save block", "blockId", blockID)
		return nil, fmt.Errorf("failed to save block: %w", err)
	}

	s.publishEvents(ctx, block)

	return ToBlockDTO(block), nil
}

func (s *BlockApplicationService) loadBlock(ctx context.Context, blockID string) (*domain.Block, error) {
	block, err := s.repo.FindByID(ctx, blockID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get block", "blockId", blockID)
		return nil, fmt.Errorf("failed to get block: %w", err)
	}
	if block == nil {
		return nil, errors.ErrNotFoundWithID("block", blockID)
	}
	return block, nil
}

// publishEvents delivers recorded domain events. Publish failures are logged
// and do not fail the request; block state is already persisted.
func (s *BlockApplicationService) publishEvents(ctx context.Context, block *domain.Block) {
	events := block.GetDomainEvents()
	if len(events) == 0 {
		return
	}

	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithError(err).Warn("Failed to publish block events", "blockId", block.BlockID, "count", len(events))
	}

	block.ClearDomainEvents()
}
