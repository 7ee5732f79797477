package application

import (
	"context"
	"fmt"
	"time"

	"github.com/farmops-platform/block-service/internal/domain"
	"github.com/farmops-platform/block-service/pkg/logging"
	"github.com/farmops-platform/block-service/pkg/metrics"
)

// SchedulingApplicationService runs scheduling ticks over blocks and the
// active template catalog
type SchedulingApplicationService struct {
	blocks    domain.BlockRepository
	templates domain.TemplateRepository
	publisher domain.EventPublisher
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewSchedulingApplicationService creates a new SchedulingApplicationService.
// The metrics instance may be nil for callers that do not export metrics.
func NewSchedulingApplicationService(
	blocks domain.BlockRepository,
	templates domain.TemplateRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
	m *metrics.Metrics,
) *SchedulingApplicationService {
	return &SchedulingApplicationService{
		blocks:    blocks,
		templates: templates,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

// EvaluateBlock runs one scheduling tick for a single block using the
// caller-supplied environmental snapshot.
func (s *SchedulingApplicationService) EvaluateBlock(ctx context.Context, cmd EvaluateBlockCommand) (*ScheduleResultDTO, error) {
	start := time.Now()

	result, err := s.evaluate(ctx, cmd)

	if s.metrics != nil {
		s.metrics.RecordSchedulingRun(err, time.Since(start))
	}
	return result, err
}

func (s *SchedulingApplicationService) evaluate(ctx context.Context, cmd EvaluateBlockCommand) (*ScheduleResultDTO, error) {
	block, err := s.blocks.FindByID(ctx, cmd.BlockID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get block", "blockId", cmd.BlockID)
		return nil, fmt.Errorf("failed to get block: %w", err)
	}
	if block == nil {
		return nil, fmt.Errorf("block %s not found", cmd.BlockID)
	}

	catalog, err := s.templates.FindActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load active templates")
		return nil, fmt.Errorf("failed to load active templates: %w", err)
	}

	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}

	schedCtx := buildSchedulingContext(block, cmd, now)
	result := domain.Schedule(block, catalog, schedCtx, now)

	s.recordOutcome(block, result)
	s.publishOutcome(ctx, block, result, now)

	s.logger.Info("Scheduling tick evaluated",
		"blockId", block.BlockID,
		"scheduled", len(result.Tasks),
		"dropped", len(result.Dropped),
	)

	return ToScheduleResultDTO(block.BlockID, result, now), nil
}

// EvaluateActiveBlocks runs a tick over all Planted and Harvesting blocks,
// assembling a calendar-only context for each. Used by the cron worker;
// sensors and task ledgers are empty unless an upstream system supplies them.
func (s *SchedulingApplicationService) EvaluateActiveBlocks(ctx context.Context, now time.Time) (int, error) {
	evaluated := 0

	for _, status := range []domain.BlockStatus{domain.BlockStatusPlanted, domain.BlockStatusHarvesting} {
		blocks, err := s.blocks.FindByStatus(ctx, status)
		if err != nil {
			return evaluated, fmt.Errorf("failed to load %s blocks: %w", status, err)
		}

		for _, block := range blocks {
			_, err := s.EvaluateBlock(ctx, EvaluateBlockCommand{
				BlockID: block.BlockID,
				Now:     now,
			})
			if err != nil {
				s.logger.WithError(err).Warn("Scheduling tick failed for block", "blockId", block.BlockID)
				continue
			}
			evaluated++
		}
	}

	return evaluated, nil
}

// buildSchedulingContext merges caller-supplied facts with facts derived
// from the block's own assignment dates.
func buildSchedulingContext(block *domain.Block, cmd EvaluateBlockCommand, now time.Time) *domain.SchedulingContext {
	queued := make(map[string]struct{}, len(cmd.QueuedTasks))
	for _, id := range cmd.QueuedTasks {
		queued[id] = struct{}{}
	}

	completed := cmd.CompletedTasks
	if completed == nil {
		completed = make(map[string]time.Time)
	}

	schedCtx := &domain.SchedulingContext{
		GrowthStage:    cmd.GrowthStage,
		CurrentMonth:   int(now.Month()),
		SensorSnapshot: cmd.SensorSnapshot,
		Weather:        cmd.Weather,
		CompletedTasks: completed,
		QueuedTasks:    queued,
		CostRates:      cmd.CostRates,
	}

	if planted, ok := earliestPlantingDate(block); ok {
		schedCtx.DaysAfterPlanting = int(now.Sub(planted).Hours() / 24)
	}
	if harvest, ok := earliestExpectedHarvest(block); ok {
		schedCtx.DaysBeforeHarvest = int(harvest.Sub(now).Hours() / 24)
	}

	return schedCtx
}

func earliestPlantingDate(block *domain.Block) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, a := range block.Assignments {
		if a.PlantingDate == nil {
			continue
		}
		if !found || a.PlantingDate.Before(earliest) {
			earliest = *a.PlantingDate
			found = true
		}
	}
	return earliest, found
}

func earliestExpectedHarvest(block *domain.Block) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, a := range block.Assignments {
		if a.ExpectedHarvestStart == nil {
			continue
		}
		if !found || a.ExpectedHarvestStart.Before(earliest) {
			earliest = *a.ExpectedHarvestStart
			found = true
		}
	}
	return earliest, found
}

func (s *SchedulingApplicationService) recordOutcome(block *domain.Block, result domain.ScheduleResult) {
	if s.metrics == nil {
		return
	}

	for _, task := range result.Tasks {
		s.metrics.RecordTaskScheduled(string(task.Category), string(task.Priority))
		if len(task.Warnings) > 0 {
			s.metrics.RecordFormulaFailure()
		}
	}
	if len(result.Dropped) > 0 {
		s.metrics.RecordTasksDropped(len(result.Dropped))
	}
	if block.MaxCapacity > 0 {
		s.metrics.RecordCapacityUtilization(block.BlockID, float64(block.TotalAssigned)/float64(block.MaxCapacity))
	}
}

func (s *SchedulingApplicationService) publishOutcome(ctx context.Context, block *domain.Block, result domain.ScheduleResult, now time.Time) {
	if len(result.Tasks) == 0 {
		return
	}

	event := &domain.TasksScheduledEvent{
		BlockID:     block.BlockID,
		FarmID:      block.FarmID,
		Tasks:       result.Tasks,
		ScheduledAt: now,
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish scheduling event", "blockId", block.BlockID)
	}
}
