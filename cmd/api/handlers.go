package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/farmops-platform/block-service/pkg/errors"
	"github.com/farmops-platform/block-service/pkg/logging"
	"github.com/farmops-platform/block-service/pkg/metrics"
	"github.com/farmops-platform/block-service/pkg/middleware"

	"github.com/farmops-platform/block-service/internal/application"
	"github.com/farmops-platform/block-service/internal/domain"
)

func respond(c *gin.Context, logger *logging.Logger, err error) bool {
	if err == nil {
		return false
	}
	responder := middleware.NewErrorResponder(c, logger.Logger)
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
	} else {
		responder.RespondInternalError(err)
	}
	return true
}

func createBlockHandler(service *application.BlockApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			BlockID     string `json:"blockId" binding:"required,block_id"`
			Name        string `json:"name" binding:"required,safe_string"`
			FarmID      string `json:"farmId" binding:"omitempty,farm_id"`
			MaxCapacity int    `json:"maxCapacity" binding:"required,gt=0"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"block.id": req.BlockID,
		})

		block, err := service.CreateBlock(c.Request.Context(), application.CreateBlockCommand{
			BlockID:     req.BlockID,
			Name:        req.Name,
			FarmID:      req.FarmID,
			MaxCapacity: req.MaxCapacity,
		})
		if respond(c, logger, err) {
			return
		}
		if m != nil {
			m.RecordBlockCreated(req.FarmID)
		}

		c.JSON(http.StatusCreated, block)
	}
}

func getBlockHandler(service *application.BlockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID := c.Param("blockId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"block.id": blockID,
		})

		block, err := service.GetBlock(c.Request.Context(), application.GetBlockQuery{BlockID: blockID})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, block)
	}
}

func listBlocksHandler(service *application.BlockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Limit  int `form:"limit"`
			Offset int `form:"offset"`
		}
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		blocks, err := service.ListBlocks(c.Request.Context(), application.ListBlocksQuery{
			Limit:  req.Limit,
			Offset: req.Offset,
		})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"blocks": blocks, "count": len(blocks)})
	}
}

func getBlocksByStatusHandler(service *application.BlockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := domain.BlockStatus(c.Param("status"))

		blocks, err := service.GetBlocksByStatus(c.Request.Context(), application.GetByStatusQuery{Status: status})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"blocks": blocks, "count": len(blocks)})
	}
}

func deleteBlockHandler(service *application.BlockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID := c.Param("blockId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"block.id": blockID,
		})

		err := service.DeleteBlock(c.Request.Context(), application.DeleteBlockCommand{BlockID: blockID})
		if respond(c, logger, err) {
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func assignPlantsHandler(service *application.BlockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID := c.Param("blockId")

		var req struct {
			PlantTypeID string `json:"plantTypeId" binding:"required,plant_type_id"`
			PlantName   string `json:"plantName" binding:"required,safe_string"`
			Count       int    `json:"count" binding:"required,gt=0"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"block.id":      blockID,
			"plant.type.id": req.PlantTypeID,
			"plant.count":   req.Count,
		})

		block, err := service.AssignPlants(c.Request.Context(), application.AssignPlantsCommand{
			BlockID:     blockID,
			PlantTypeID: req.PlantTypeID,
			PlantName:   req.PlantName,
			Count:       req.Count,
		})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, block)
	}
}

func removePlantsHandler(service *application.BlockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID := c.Param("blockId")
		plantTypeID := c.Param("plantTypeId")

		var req struct {
			Count int `json:"count" binding:"required,gt=0"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"block.id":      blockID,
			"plant.type.id": plantTypeID,
		})

		block, err := service.RemovePlants(c.Request.Context(), application.RemovePlantsCommand{
			BlockID:     blockID,
			PlantTypeID: plantTypeID,
			Count:       req.Count,
		})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, block)
	}
}

func confirmPlantingHandler(service *application.BlockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID := c.Param("blockId")

		var req struct {
			Actor          string `json:"actor" binding:"omitempty,safe_string"`
			HarvestOffsets map[string]struct {
				StartDays int `json:"startDays"`
				EndDays   int `json:"endDays"`
			} `json:"harvestOffsets"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		offsets := make(map[string]domain.HarvestOffsets, len(req.HarvestOffsets))
		for plantTypeID, o := range req.HarvestOffsets {
			offsets[plantTypeID] = domain.HarvestOffsets{StartDays: o.StartDays, EndDays: o.EndDays}
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"block.id": blockID,
		})

		block, err := service.ConfirmPlanting(c.Request.Context(), application.ConfirmPlantingCommand{
			BlockID:        blockID,
			Actor:          req.Actor,
			HarvestOffsets: offsets,
		})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, block)
	}
}

func startHarvestHandler(service *application.BlockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID := c.Param("blockId")

		var req struct {
			Actor string `json:"actor" binding:"omitempty,safe_string"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"block.id": blockID,
		})

		block, err := service.StartHarvest(c.Request.Context(), application.StartHarvestCommand{
			BlockID: blockID,
			Actor:   req.Actor,
		})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, block)
	}
}

func openAlertHandler(service *application.BlockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID := c.Param("blockId")

		var req struct {
			Kind        string `json:"kind" binding:"required"`
			Severity    string `json:"severity" binding:"required"`
			Description string `json:"description" binding:"omitempty,safe_string"`
			Actor       string `json:"actor" binding:"omitempty,safe_string"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"block.id":       blockID,
			"alert.kind":     req.Kind,
			"alert.severity": req.Severity,
		})

		block, err := service.OpenAlert(c.Request.Context(), application.OpenAlertCommand{
			BlockID:     blockID,
			Kind:        domain.AlertKind(req.Kind),
			Severity:    domain.AlertSeverity(req.Severity),
			Description: req.Description,
			Actor:       req.Actor,
		})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, block)
	}
}

func resolveAlertHandler(service *application.BlockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID := c.Param("blockId")

		var req struct {
			Actor string `json:"actor" binding:"omitempty,safe_string"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		block, err := service.ResolveAlert(c.Request.Context(), application.ResolveAlertCommand{
			BlockID: blockID,
			Actor:   req.Actor,
		})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, block)
	}
}

func getHistoryHandler(service *application.BlockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID := c.Param("blockId")

		history, err := service.GetHistory(c.Request.Context(), application.GetHistoryQuery{BlockID: blockID})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"blockId": blockID, "history": history})
	}
}

func scheduleBlockHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockID := c.Param("blockId")

		var req struct {
			GrowthStage    string               `json:"growthStage" binding:"omitempty,growth_stage"`
			SensorSnapshot map[string]float64   `json:"sensorSnapshot"`
			Weather        []string             `json:"weather"`
			CompletedTasks map[string]time.Time `json:"completedTasks"`
			QueuedTasks    []string             `json:"queuedTasks"`
			CostRates      map[string]float64   `json:"costRates"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"block.id":     blockID,
			"growth.stage": req.GrowthStage,
		})

		result, err := service.EvaluateBlock(c.Request.Context(), application.EvaluateBlockCommand{
			BlockID:        blockID,
			GrowthStage:    domain.GrowthStage(req.GrowthStage),
			SensorSnapshot: req.SensorSnapshot,
			Weather:        req.Weather,
			CompletedTasks: req.CompletedTasks,
			QueuedTasks:    req.QueuedTasks,
			CostRates:      req.CostRates,
		})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func createTemplateHandler(service *application.TemplateApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TemplateID               string                `json:"templateId" binding:"required,template_id"`
			Name                     string                `json:"name" binding:"required,safe_string"`
			Category                 string                `json:"category" binding:"required,task_category"`
			Priority                 string                `json:"priority" binding:"required,task_priority"`
			EstimatedDurationMinutes int                   `json:"estimatedDurationMinutes" binding:"required,gt=0"`
			Triggers                 domain.TriggerSpec    `json:"triggers"`
			Dependencies             domain.DependencySpec `json:"dependencies"`
			Resources                domain.ResourceSpec   `json:"resources"`
			Cost                     domain.CostFormulas   `json:"cost"`
			RequiresApproval         bool                  `json:"requiresApproval"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"template.id": req.TemplateID,
		})

		template, err := service.CreateTemplate(c.Request.Context(), application.CreateTemplateCommand{
			TemplateID:               req.TemplateID,
			Name:                     req.Name,
			Category:                 domain.TaskCategory(req.Category),
			Priority:                 domain.TaskPriority(req.Priority),
			EstimatedDurationMinutes: req.EstimatedDurationMinutes,
			Triggers:                 req.Triggers,
			Dependencies:             req.Dependencies,
			Resources:                req.Resources,
			Cost:                     req.Cost,
			RequiresApproval:         req.RequiresApproval,
		})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusCreated, template)
	}
}

func getTemplateHandler(service *application.TemplateApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		templateID := c.Param("templateId")

		template, err := service.GetTemplate(c.Request.Context(), application.GetTemplateQuery{TemplateID: templateID})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, template)
	}
}

func listTemplatesHandler(service *application.TemplateApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Limit  int `form:"limit"`
			Offset int `form:"offset"`
		}
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		templates, err := service.ListTemplates(c.Request.Context(), application.ListTemplatesQuery{
			Limit:  req.Limit,
			Offset: req.Offset,
		})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"templates": templates, "count": len(templates)})
	}
}

func activateTemplateHandler(service *application.TemplateApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		templateID := c.Param("templateId")

		template, err := service.ActivateTemplate(c.Request.Context(), application.ActivateTemplateCommand{TemplateID: templateID})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, template)
	}
}

func approveTemplateHandler(service *application.TemplateApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		templateID := c.Param("templateId")

		var req struct {
			Approver string `json:"approver" binding:"required,safe_string"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		template, err := service.ApproveTemplate(c.Request.Context(), application.ApproveTemplateCommand{
			TemplateID: templateID,
			Approver:   req.Approver,
		})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, template)
	}
}

func deprecateTemplateHandler(service *application.TemplateApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		templateID := c.Param("templateId")

		template, err := service.DeprecateTemplate(c.Request.Context(), application.DeprecateTemplateCommand{TemplateID: templateID})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, template)
	}
}

func archiveTemplateHandler(service *application.TemplateApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		templateID := c.Param("templateId")

		template, err := service.ArchiveTemplate(c.Request.Context(), application.ArchiveTemplateCommand{TemplateID: templateID})
		if respond(c, logger, err) {
			return
		}

		c.JSON(http.StatusOK, template)
	}
}
