package application

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/farmops-platform/block-service/pkg/logging"

	"github.com/farmops-platform/block-service/internal/domain"
)

func newTestSchedulingService(blocks domain.BlockRepository, templates domain.TemplateRepository, publisher domain.EventPublisher) *SchedulingApplicationService {
	logger := logging.New(logging.DefaultConfig("test"))
	return NewSchedulingApplicationService(blocks, templates, publisher, logger, nil)
}

func plantedBlock(t *testing.T, now time.Time) *domain.Block {
	t.Helper()
	block, err := domain.NewBlock("BLK-001", "North Field A", "FARM-001", 100)
	if err != nil {
		t.Fatalf("unexpected new block err: %v", err)
	}
	if err := block.AssignPlants("tomato-roma", "Roma Tomato", 80); err != nil {
		t.Fatalf("unexpected assign err: %v", err)
	}
	if err := block.ConfirmPlanting(map[string]domain.HarvestOffsets{
		"tomato-roma": {StartDays: 70, EndDays: 90},
	}, "operator-1"); err != nil {
		t.Fatalf("unexpected confirm err: %v", err)
	}

	// Pin the assignment dates so derived day counts are deterministic.
	planted := now.AddDate(0, 0, -30)
	harvestStart := now.AddDate(0, 0, 40)
	harvestEnd := now.AddDate(0, 0, 60)
	for i := range block.Assignments {
		block.Assignments[i].PlantingDate = &planted
		block.Assignments[i].ExpectedHarvestStart = &harvestStart
		block.Assignments[i].ExpectedHarvestEnd = &harvestEnd
	}
	block.ClearDomainEvents()
	return block
}

func activeIrrigationTemplate(t *testing.T) *domain.TaskTemplate {
	t.Helper()
	template, err := domain.NewTaskTemplate("TPL-001", "Drip Irrigation", domain.CategoryIrrigation, domain.PriorityHigh, 45)
	if err != nil {
		t.Fatalf("unexpected new template err: %v", err)
	}
	minDays := 14
	template.Triggers.DaysAfterPlanting = &minDays
	template.Cost = domain.CostFormulas{
		LaborFormula:       "plant_count * 0.05 * labor_rate",
		OverheadPercentage: 10,
	}
	if err := template.Activate(); err != nil {
		t.Fatalf("unexpected activate err: %v", err)
	}
	template.ClearDomainEvents()
	return template
}

func TestSchedulingApplicationService_EvaluateBlock(t *testing.T) {
	now := time.Date(2026, time.June, 15, 6, 0, 0, 0, time.UTC)
	block := plantedBlock(t, now)
	template := activeIrrigationTemplate(t)

	blocks := &stubBlockRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Block, error) {
			return block, nil
		},
	}
	templates := &stubTemplateRepo{
		FindActiveFn: func(_ context.Context) ([]*domain.TaskTemplate, error) {
			return []*domain.TaskTemplate{template}, nil
		},
	}
	publisher := &stubPublisher{}
	service := newTestSchedulingService(blocks, templates, publisher)

	result, err := service.EvaluateBlock(context.Background(), EvaluateBlockCommand{
		BlockID:     "BLK-001",
		GrowthStage: domain.StageVegetative,
		CostRates:   map[string]float64{"labor_rate": 25},
		Now:         now,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.BlockID != "BLK-001" || len(result.Tasks) != 1 {
		t.Fatalf("unexpected result: %#v", result)
	}

	task := result.Tasks[0]
	if task.TemplateID != "TPL-001" {
		t.Fatalf("unexpected task: %#v", task)
	}
	// 80 plants * 0.05 * 25 with 10% overhead.
	if math.Abs(task.Cost-110) > 1e-9 {
		t.Fatalf("expected cost 110, got %v", task.Cost)
	}
	if len(task.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", task.Warnings)
	}

	if len(publisher.Events) != 1 {
		t.Fatalf("expected one scheduling event, got %d", len(publisher.Events))
	}
	event, ok := publisher.Events[0].(*domain.TasksScheduledEvent)
	if !ok || event.BlockID != "BLK-001" || len(event.Tasks) != 1 {
		t.Fatalf("unexpected event: %#v", publisher.Events[0])
	}
}

func TestSchedulingApplicationService_EvaluateBlock_TooEarly(t *testing.T) {
	now := time.Date(2026, time.June, 15, 6, 0, 0, 0, time.UTC)
	block := plantedBlock(t, now)
	template := activeIrrigationTemplate(t)
	minDays := 45
	template.Triggers.DaysAfterPlanting = &minDays

	blocks := &stubBlockRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Block, error) {
			return block, nil
		},
	}
	templates := &stubTemplateRepo{
		FindActiveFn: func(_ context.Context) ([]*domain.TaskTemplate, error) {
			return []*domain.TaskTemplate{template}, nil
		},
	}
	publisher := &stubPublisher{}
	service := newTestSchedulingService(blocks, templates, publisher)

	result, err := service.EvaluateBlock(context.Background(), EvaluateBlockCommand{
		BlockID: "BLK-001",
		Now:     now,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(result.Tasks) != 0 {
		t.Fatalf("expected no tasks 30 days after planting, got %d", len(result.Tasks))
	}
	if len(publisher.Events) != 0 {
		t.Fatalf("empty tick must not publish, got %d events", len(publisher.Events))
	}
}

func TestSchedulingApplicationService_EvaluateBlock_MissingPrerequisite(t *testing.T) {
	now := time.Date(2026, time.June, 15, 6, 0, 0, 0, time.UTC)
	block := plantedBlock(t, now)
	template := activeIrrigationTemplate(t)
	template.Dependencies.PrerequisiteTasks = []string{"TPL-000"}

	blocks := &stubBlockRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Block, error) {
			return block, nil
		},
	}
	templates := &stubTemplateRepo{
		FindActiveFn: func(_ context.Context) ([]*domain.TaskTemplate, error) {
			return []*domain.TaskTemplate{template}, nil
		},
	}
	service := newTestSchedulingService(blocks, templates, &stubPublisher{})

	result, err := service.EvaluateBlock(context.Background(), EvaluateBlockCommand{
		BlockID: "BLK-001",
		Now:     now,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(result.Tasks) != 0 || len(result.Dropped) != 1 {
		t.Fatalf("expected one dropped task, got %#v", result)
	}
	if result.Dropped[0].TemplateID != "TPL-001" {
		t.Fatalf("unexpected dropped task: %#v", result.Dropped[0])
	}
}

func TestSchedulingApplicationService_EvaluateBlock_NotFound(t *testing.T) {
	service := newTestSchedulingService(&stubBlockRepo{}, &stubTemplateRepo{}, &stubPublisher{})

	_, err := service.EvaluateBlock(context.Background(), EvaluateBlockCommand{BlockID: "missing"})
	if err == nil {
		t.Fatal("expected error for unknown block")
	}
}

func TestSchedulingApplicationService_EvaluateActiveBlocks(t *testing.T) {
	now := time.Date(2026, time.June, 15, 6, 0, 0, 0, time.UTC)
	block := plantedBlock(t, now)
	template := activeIrrigationTemplate(t)

	blocks := &stubBlockRepo{
		FindByStatusFn: func(_ context.Context, status domain.BlockStatus) ([]*domain.Block, error) {
			if status == domain.BlockStatusPlanted {
				return []*domain.Block{block}, nil
			}
			return nil, nil
		},
		FindByIDFn: func(_ context.Context, _ string) (*domain.Block, error) {
			return block, nil
		},
	}
	templates := &stubTemplateRepo{
		FindActiveFn: func(_ context.Context) ([]*domain.TaskTemplate, error) {
			return []*domain.TaskTemplate{template}, nil
		},
	}
	publisher := &stubPublisher{}
	service := newTestSchedulingService(blocks, templates, publisher)

	evaluated, err := service.EvaluateActiveBlocks(context.Background(), now)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if evaluated != 1 {
		t.Fatalf("expected 1 evaluated block, got %d", evaluated)
	}
	if len(publisher.Events) != 1 {
		t.Fatalf("expected one scheduling event, got %d", len(publisher.Events))
	}
}
