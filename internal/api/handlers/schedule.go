package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jjm-manufacturing/core1-backend/internal/logging"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/telemetry"
	"github.com/jjm-manufacturing/core1-backend/internal/utils"
)

type ScheduleHandler struct {
	schedules ScheduleStore
	notifier  ScheduleNotifier
	alerts    ScheduleAlertMetrics
	tracer    *telemetry.BusinessTracer
	logger    logrus.FieldLogger
}

// NewScheduleHandler wires the schedule endpoints. notifier and alerts may be nil.
func NewScheduleHandler(schedules ScheduleStore, notifier ScheduleNotifier, alerts ScheduleAlertMetrics, tracer *telemetry.BusinessTracer, logger logrus.FieldLogger) *ScheduleHandler {
	if tracer == nil {
		tracer = telemetry.NewBusinessTracer()
	}
	return &ScheduleHandler{
		schedules: schedules,
		notifier:  notifier,
		alerts:    alerts,
		tracer:    tracer,
		logger:    logger,
	}
}

func (h *ScheduleHandler) List(c *gin.Context) {
	schedules, err := h.schedules.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Schedule", "list schedules")
		return
	}
	c.JSON(http.StatusOK, schedules)
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "Schedule")
	if !ok {
		return
	}

	schedule, err := h.schedules.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Schedule", "get schedule")
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	var req models.ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validateScheduleRequest(req); err != nil {
		respondError(c, h.logger, err, "Schedule", "create schedule")
		return
	}

	ctx, span := h.tracer.TraceScheduleChange(c.Request.Context(), "create", string(req.Status))
	defer span.End()

	schedule, err := h.schedules.Create(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		respondError(c, h.logger, err, "Schedule", "create schedule")
		return
	}

	h.alert(ctx, schedule)
	c.JSON(http.StatusCreated, gin.H{"message": "Schedule created successfully", "schedule": schedule})
}

func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "Schedule")
	if !ok {
		return
	}

	var req models.ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validateScheduleRequest(req); err != nil {
		respondError(c, h.logger, err, "Schedule", "update schedule")
		return
	}

	ctx, span := h.tracer.TraceScheduleChange(c.Request.Context(), "update", string(req.Status))
	defer span.End()

	schedule, err := h.schedules.Update(ctx, id, req)
	if err != nil {
		telemetry.RecordError(span, err)
		respondError(c, h.logger, err, "Schedule", "update schedule")
		return
	}

	h.alert(ctx, schedule)
	c.JSON(http.StatusOK, gin.H{"message": "Schedule updated successfully", "schedule": schedule})
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "Schedule")
	if !ok {
		return
	}

	if err := h.schedules.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Schedule", "delete schedule")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted successfully"})
}

// alert notifies operations about delayed schedules. Delivery is best effort.
func (h *ScheduleHandler) alert(ctx context.Context, schedule *models.ProductionSchedule) {
	if schedule == nil || !schedule.Status.NeedsAttention() {
		return
	}

	logging.LogBusinessEvent(h.logger, "schedule_needs_attention", map[string]interface{}{
		"schedule_id": schedule.ID,
		"status":      string(schedule.Status),
	})
	if h.alerts != nil {
		h.alerts.RecordScheduleAlert(string(schedule.Status))
	}
	if h.notifier != nil {
		h.notifier.NotifySchedule(ctx, schedule)
	}
}

func validateScheduleRequest(req models.ScheduleRequest) error {
	if req.Start.IsZero() || req.End.IsZero() {
		return utils.NewValidationError("start and end are required")
	}
	if req.End.Before(req.Start) {
		return utils.NewValidationError("end must not be before start")
	}
	return nil
}
