package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jjm-manufacturing/core1-backend/internal/database"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/telemetry"
)

type scheduleFixture struct {
	store    *MockScheduleStore
	notifier *MockScheduleNotifier
	alerts   *countingAlerts
	spans    *tracetest.SpanRecorder
	router   http.Handler
}

func newScheduleFixture() *scheduleFixture {
	f := &scheduleFixture{
		store:    new(MockScheduleStore),
		notifier: new(MockScheduleNotifier),
		alerts:   &countingAlerts{},
		spans:    tracetest.NewSpanRecorder(),
	}
	logger, _ := quietLogger()
	tracer := telemetry.NewBusinessTracerWithProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(f.spans)))
	h := NewScheduleHandler(f.store, f.notifier, f.alerts, tracer, logger)

	router := newTestRouter()
	router.GET("/api/prodSched/list", h.List)
	router.POST("/api/prodSched/create", h.Create)
	router.GET("/api/prodSched/:id", h.Get)
	router.PATCH("/api/prodSched/:id", h.Update)
	router.DELETE("/api/prodSched/:id", h.Delete)
	f.router = router
	return f
}

func scheduleAt(status models.ScheduleStatus) *models.ProductionSchedule {
	start := time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)
	return &models.ProductionSchedule{
		ID:         testScheduleID,
		Status:     status,
		Start:      start,
		End:        start.Add(72 * time.Hour),
		WorkOrders: []models.WorkOrder{},
	}
}

func TestSchedule_CreateDelayedNotifies(t *testing.T) {
	f := newScheduleFixture()
	created := scheduleAt(models.ScheduleDelayed)
	f.store.On("Create", mock.Anything, mock.Anything).Return(created, nil)
	f.notifier.On("NotifySchedule", mock.Anything, created).Return()

	body := `{"status":"DELAYED","start":"2026-11-02T08:00:00Z","end":"2026-11-05T08:00:00Z"}`
	w := doJSON(f.router, "POST", "/api/prodSched/create", body, "")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Schedule created successfully")
	f.notifier.AssertExpectations(t)
	assert.Equal(t, []string{"DELAYED"}, f.alerts.statuses)

	spans := f.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "schedule.create", spans[0].Name())
}

func TestSchedule_UpdateOnTimeDoesNotNotify(t *testing.T) {
	f := newScheduleFixture()
	f.store.On("Update", mock.Anything, testScheduleID, mock.Anything).Return(scheduleAt(models.ScheduleOnTime), nil)

	body := `{"status":"ONTIME","start":"2026-11-02T08:00:00Z","end":"2026-11-05T08:00:00Z"}`
	w := doJSON(f.router, "PATCH", "/api/prodSched/"+testScheduleID, body, "")

	require.Equal(t, http.StatusOK, w.Code)
	f.notifier.AssertNotCalled(t, "NotifySchedule", mock.Anything, mock.Anything)
	assert.Empty(t, f.alerts.statuses)
}

func TestSchedule_Validation(t *testing.T) {
	f := newScheduleFixture()

	w := doJSON(f.router, "POST", "/api/prodSched/create", `{"start":"2026-11-05T08:00:00Z","end":"2026-11-02T08:00:00Z"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "end must not be before start")

	w = doJSON(f.router, "POST", "/api/prodSched/create", `{"status":"LATE","start":"2026-11-02T08:00:00Z","end":"2026-11-05T08:00:00Z"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSchedule_SameStartAndEnd(t *testing.T) {
	f := newScheduleFixture()
	f.store.On("Create", mock.Anything, mock.Anything).Return(scheduleAt(models.ScheduleOnTime), nil)

	w := doJSON(f.router, "POST", "/api/prodSched/create", `{"start":"2026-11-02T08:00:00Z","end":"2026-11-02T08:00:00Z"}`, "")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSchedule_UpdateNotFound(t *testing.T) {
	f := newScheduleFixture()
	f.store.On("Update", mock.Anything, testScheduleID, mock.Anything).Return(nil, database.ErrNotFound)

	body := `{"status":"DELAYED","start":"2026-11-02T08:00:00Z","end":"2026-11-05T08:00:00Z"}`
	w := doJSON(f.router, "PATCH", "/api/prodSched/"+testScheduleID, body, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	f.notifier.AssertNotCalled(t, "NotifySchedule", mock.Anything, mock.Anything)
}
