package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/farmops-platform/block-service/pkg/logging"
	"github.com/farmops-platform/block-service/pkg/middleware"

	"github.com/farmops-platform/block-service/internal/application"
	"github.com/farmops-platform/block-service/internal/domain"
)

type stubBlockRepo struct {
	SaveFn         func(ctx context.Context, block *domain.Block) error
	FindByIDFn     func(ctx context.Context, blockID string) (*domain.Block, error)
	FindByStatusFn func(ctx context.Context, status domain.BlockStatus) ([]*domain.Block, error)
	FindAllFn      func(ctx context.Context, limit, offset int) ([]*domain.Block, error)
	DeleteFn       func(ctx context.Context, blockID string) error
}

func (s *stubBlockRepo) Save(ctx context.Context, block *domain.Block) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, block)
	}
	return nil
}

func (s *stubBlockRepo) FindByID(ctx context.Context, blockID string) (*domain.Block, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, blockID)
	}
	return nil, nil
}

func (s *stubBlockRepo) FindByStatus(ctx context.Context, status domain.BlockStatus) ([]*domain.Block, error) {
	if s.FindByStatusFn != nil {
		return s.FindByStatusFn(ctx, status)
	}
	return nil, nil
}

func (s *stubBlockRepo) FindAll(ctx context.Context, limit, offset int) ([]*domain.Block, error) {
	if s.FindAllFn != nil {
		return s.FindAllFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *stubBlockRepo) Delete(ctx context.Context, blockID string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, blockID)
	}
	return nil
}

type stubTemplateRepo struct {
	SaveFn     func(ctx context.Context, template *domain.TaskTemplate) error
	FindByIDFn func(ctx context.Context, templateID string) (*domain.TaskTemplate, error)
}

func (s *stubTemplateRepo) Save(ctx context.Context, template *domain.TaskTemplate) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, template)
	}
	return nil
}

func (s *stubTemplateRepo) FindByID(ctx context.Context, templateID string) (*domain.TaskTemplate, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, templateID)
	}
	return nil, nil
}

func (s *stubTemplateRepo) FindActive(ctx context.Context) ([]*domain.TaskTemplate, error) {
	return nil, nil
}

func (s *stubTemplateRepo) FindAll(ctx context.Context, limit, offset int) ([]*domain.TaskTemplate, error) {
	return nil, nil
}

type stubPublisher struct{}

func (s *stubPublisher) Publish(_ context.Context, _ domain.DomainEvent) error { return nil }
func (s *stubPublisher) PublishAll(_ context.Context, _ []domain.DomainEvent) error {
	return nil
}

func newTestBlockService(repo domain.BlockRepository) (*application.BlockApplicationService, *logging.Logger) {
	logger := logging.New(logging.DefaultConfig("test"))
	return application.NewBlockApplicationService(repo, &stubPublisher{}, logger), logger
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.InitValidator()
	return gin.New()
}

func occupiedBlock(t *testing.T) *domain.Block {
	t.Helper()
	block, err := domain.NewBlock("BLK-001", "North Field A", "FARM-001", 100)
	if err != nil {
		t.Fatalf("new block: %v", err)
	}
	if err := block.AssignPlants("tomato-roma", "Roma Tomato", 60); err != nil {
		t.Fatalf("assign plants: %v", err)
	}
	block.ClearDomainEvents()
	return block
}

func requestJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_ENV_KEY", "value")
	if got := getEnv("TEST_ENV_KEY", "default"); got != "value" {
		t.Fatalf("expected env value, got %q", got)
	}
	if got := getEnv("MISSING_KEY", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("MONGODB_URI", "mongodb://example:27017")
	t.Setenv("MONGODB_DATABASE", "farmops_test")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092")

	cfg := loadConfig()
	if cfg.ServerAddr != ":9000" {
		t.Fatalf("unexpected server addr: %q", cfg.ServerAddr)
	}
	if cfg.MongoDB.URI != "mongodb://example:27017" || cfg.MongoDB.Database != "farmops_test" {
		t.Fatalf("unexpected mongo config: %#v", cfg.MongoDB)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "broker-1:9092" {
		t.Fatalf("unexpected kafka brokers: %#v", cfg.Kafka.Brokers)
	}
}

func TestCreateBlockHandler_Success(t *testing.T) {
	repo := &stubBlockRepo{}
	service, logger := newTestBlockService(repo)
	router := newTestRouter()
	router.POST("/blocks", createBlockHandler(service, nil, logger))

	resp := requestJSON(t, router, http.MethodPost, "/blocks", map[string]any{
		"blockId":     "BLK-001",
		"name":        "North Field A",
		"farmId":      "FARM-001",
		"maxCapacity": 100,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateBlockHandler_BadRequest(t *testing.T) {
	repo := &stubBlockRepo{}
	service, logger := newTestBlockService(repo)
	router := newTestRouter()
	router.POST("/blocks", createBlockHandler(service, nil, logger))

	resp := requestJSON(t, router, http.MethodPost, "/blocks", map[string]any{
		"name": "missing id and capacity",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateBlockHandler_InternalError(t *testing.T) {
	repo := &stubBlockRepo{
		SaveFn: func(_ context.Context, _ *domain.Block) error {
			return errors.New("save failed")
		},
	}
	service, logger := newTestBlockService(repo)
	router := newTestRouter()
	router.POST("/blocks", createBlockHandler(service, nil, logger))

	resp := requestJSON(t, router, http.MethodPost, "/blocks", map[string]any{
		"blockId":     "BLK-001",
		"name":        "North Field A",
		"maxCapacity": 100,
	})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestGetBlockHandler_NotFound(t *testing.T) {
	repo := &stubBlockRepo{}
	service, logger := newTestBlockService(repo)
	router := newTestRouter()
	router.GET("/blocks/:blockId", getBlockHandler(service, logger))

	resp := requestJSON(t, router, http.MethodGet, "/blocks/BLK-404", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestAssignPlantsHandler_CapacityConflict(t *testing.T) {
	block := occupiedBlock(t)
	repo := &stubBlockRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Block, error) {
			return block, nil
		},
	}
	service, logger := newTestBlockService(repo)
	router := newTestRouter()
	router.POST("/blocks/:blockId/assignments", assignPlantsHandler(service, logger))

	resp := requestJSON(t, router, http.MethodPost, "/blocks/BLK-001/assignments", map[string]any{
		"plantTypeId": "basil-genovese",
		"plantName":   "Genovese Basil",
		"count":       50,
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDeleteBlockHandler_OccupiedConflict(t *testing.T) {
	block := occupiedBlock(t)
	repo := &stubBlockRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Block, error) {
			return block, nil
		},
	}
	service, logger := newTestBlockService(repo)
	router := newTestRouter()
	router.DELETE("/blocks/:blockId", deleteBlockHandler(service, logger))

	resp := requestJSON(t, router, http.MethodDelete, "/blocks/BLK-001", nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestLifecycleHandlers_Success(t *testing.T) {
	block := occupiedBlock(t)
	repo := &stubBlockRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Block, error) {
			return block, nil
		},
	}
	service, logger := newTestBlockService(repo)
	router := newTestRouter()
	router.POST("/blocks/:blockId/planting/confirm", confirmPlantingHandler(service, logger))
	router.POST("/blocks/:blockId/harvest/start", startHarvestHandler(service, logger))

	confirmResp := requestJSON(t, router, http.MethodPost, "/blocks/BLK-001/planting/confirm", map[string]any{
		"actor": "operator-1",
		"harvestOffsets": map[string]any{
			"tomato-roma": map[string]any{"startDays": 70, "endDays": 90},
		},
	})
	if confirmResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", confirmResp.Code, confirmResp.Body.String())
	}

	harvestResp := requestJSON(t, router, http.MethodPost, "/blocks/BLK-001/harvest/start", map[string]any{
		"actor": "operator-1",
	})
	if harvestResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", harvestResp.Code, harvestResp.Body.String())
	}
}

func TestAlertHandlers_Success(t *testing.T) {
	block := occupiedBlock(t)
	repo := &stubBlockRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Block, error) {
			return block, nil
		},
	}
	service, logger := newTestBlockService(repo)
	router := newTestRouter()
	router.POST("/blocks/:blockId/alerts", openAlertHandler(service, logger))
	router.POST("/blocks/:blockId/alerts/resolve", resolveAlertHandler(service, logger))

	openResp := requestJSON(t, router, http.MethodPost, "/blocks/BLK-001/alerts", map[string]any{
		"kind":        "pest",
		"severity":    "high",
		"description": "aphids on row 3",
	})
	if openResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", openResp.Code, openResp.Body.String())
	}

	resolveResp := requestJSON(t, router, http.MethodPost, "/blocks/BLK-001/alerts/resolve", map[string]any{})
	if resolveResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resolveResp.Code, resolveResp.Body.String())
	}
}

func TestQueryHandlers_Success(t *testing.T) {
	repo := &stubBlockRepo{
		FindByStatusFn: func(_ context.Context, _ domain.BlockStatus) ([]*domain.Block, error) {
			return []*domain.Block{occupiedBlock(t)}, nil
		},
		FindAllFn: func(_ context.Context, _ int, _ int) ([]*domain.Block, error) {
			return []*domain.Block{occupiedBlock(t)}, nil
		},
	}
	service, logger := newTestBlockService(repo)
	router := newTestRouter()
	router.GET("/blocks/status/:status", getBlocksByStatusHandler(service, logger))
	router.GET("/blocks", listBlocksHandler(service, logger))
	router.GET("/blocks/:blockId/history", getHistoryHandler(service, logger))

	statusResp := requestJSON(t, router, http.MethodGet, "/blocks/status/assigned", nil)
	if statusResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", statusResp.Code)
	}

	listResp := requestJSON(t, router, http.MethodGet, "/blocks?limit=10&offset=0", nil)
	if listResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listResp.Code)
	}
}

func TestScheduleBlockHandler_Success(t *testing.T) {
	block := occupiedBlock(t)
	blocks := &stubBlockRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Block, error) {
			return block, nil
		},
	}
	templates := &stubTemplateRepo{}
	logger := logging.New(logging.DefaultConfig("test"))
	service := application.NewSchedulingApplicationService(blocks, templates, &stubPublisher{}, logger, nil)

	router := newTestRouter()
	router.POST("/blocks/:blockId/schedule", scheduleBlockHandler(service, logger))

	resp := requestJSON(t, router, http.MethodPost, "/blocks/BLK-001/schedule", map[string]any{
		"growthStage": "vegetative",
		"costRates":   map[string]any{"labor_rate": 25},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestTemplateHandlers_CreateAndActivate(t *testing.T) {
	var stored *domain.TaskTemplate
	repo := &stubTemplateRepo{
		SaveFn: func(_ context.Context, tpl *domain.TaskTemplate) error {
			stored = tpl
			return nil
		},
		FindByIDFn: func(_ context.Context, _ string) (*domain.TaskTemplate, error) {
			return stored, nil
		},
	}
	logger := logging.New(logging.DefaultConfig("test"))
	service := application.NewTemplateApplicationService(repo, &stubPublisher{}, logger)

	router := newTestRouter()
	router.POST("/templates", createTemplateHandler(service, logger))
	router.POST("/templates/:templateId/activate", activateTemplateHandler(service, logger))

	createResp := requestJSON(t, router, http.MethodPost, "/templates", map[string]any{
		"templateId":               "TPL-001",
		"name":                     "Drip Irrigation",
		"category":                 "irrigation",
		"priority":                 "high",
		"estimatedDurationMinutes": 45,
		"cost": map[string]any{
			"laborFormula":       "plant_count * 0.05 * labor_rate",
			"overheadPercentage": 10,
		},
	})
	if createResp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", createResp.Code, createResp.Body.String())
	}

	activateResp := requestJSON(t, router, http.MethodPost, "/templates/TPL-001/activate", nil)
	if activateResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", activateResp.Code, activateResp.Body.String())
	}
}
