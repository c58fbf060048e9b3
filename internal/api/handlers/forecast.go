package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/services"
	"github.com/jjm-manufacturing/core1-backend/internal/telemetry"
)

type ForecastHandler struct {
	forecasts     ForecastStore
	analyzer      Analyzer
	defaultWindow int
	tracer        *telemetry.BusinessTracer
	logger        logrus.FieldLogger
}

func NewForecastHandler(forecasts ForecastStore, analyzer Analyzer, defaultWindow int, tracer *telemetry.BusinessTracer, logger logrus.FieldLogger) *ForecastHandler {
	if defaultWindow <= 0 {
		defaultWindow = services.DefaultWindowSize
	}
	if tracer == nil {
		tracer = telemetry.NewBusinessTracer()
	}
	return &ForecastHandler{
		forecasts:     forecasts,
		analyzer:      analyzer,
		defaultWindow: defaultWindow,
		tracer:        tracer,
		logger:        logger,
	}
}

func (h *ForecastHandler) List(c *gin.Context) {
	forecasts, err := h.forecasts.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Forecast", "list forecasts")
		return
	}
	c.JSON(http.StatusOK, forecasts)
}

func (h *ForecastHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "Forecast")
	if !ok {
		return
	}

	forecast, err := h.forecasts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Forecast", "get forecast")
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func (h *ForecastHandler) Create(c *gin.Context) {
	var req models.DemandForecastRequest
	if !bindJSON(c, &req) {
		return
	}

	forecast, err := h.forecasts.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Forecast", "create forecast")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Forecast created successfully", "forecast": forecast})
}

func (h *ForecastHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "Forecast")
	if !ok {
		return
	}

	var req models.DemandForecastRequest
	if !bindJSON(c, &req) {
		return
	}

	forecast, err := h.forecasts.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Forecast", "update forecast")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Forecast updated successfully", "forecast": forecast})
}

func (h *ForecastHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "Forecast")
	if !ok {
		return
	}

	if err := h.forecasts.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Forecast", "delete forecast")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Forecast deleted successfully"})
}

// Analysis runs the forecast analysis over every stored entry in insertion order.
// The optional window query parameter overrides the configured window size.
func (h *ForecastHandler) Analysis(c *gin.Context) {
	windowSize := h.defaultWindow
	if raw := c.Query("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window must be a positive integer"})
			return
		}
		windowSize = n
	}

	observations, err := h.forecasts.Observations(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Forecast", "load forecasts")
		return
	}

	ctx, span := h.tracer.TraceForecastAnalysis(c.Request.Context(), len(observations), windowSize)
	defer span.End()

	result, err := h.analyzer.Analyze(ctx, observations, windowSize)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, services.ErrInvalidWindowSize) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, h.logger, err, "Forecast", "analyze forecasts")
		return
	}

	h.tracer.RecordAnalysisResult(span, telemetry.AnalysisSummary{
		Windows:       len(result.MovingAverages),
		TotalValue:    result.TotalValue,
		HasPrediction: result.PredictedNext != nil,
		NarrativeSize: len(result.Narrative),
	})
	c.JSON(http.StatusOK, result)
}
