package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

func workOrderRouter(store *MockWorkOrderStore) http.Handler {
	logger, _ := quietLogger()
	h := NewWorkOrderHandler(store, logger)

	router := newTestRouter()
	router.GET("/api/workOrders/list", h.List)
	router.POST("/api/workOrders/create", h.Create)
	router.GET("/api/workOrders/:id", h.Get)
	router.PATCH("/api/workOrders/:id", h.Update)
	router.DELETE("/api/workOrders/:id", h.Delete)
	return router
}

func TestWorkOrder_Create(t *testing.T) {
	store := new(MockWorkOrderStore)
	store.On("Create", mock.Anything, mock.MatchedBy(func(req models.WorkOrderRequest) bool {
		return req.ProductID == testProductID && req.Quantity == 50 && req.ProductionScheduleID == nil
	})).Return(&models.WorkOrder{ID: "wo-1", ProductID: testProductID, Quantity: 50, Status: models.WorkOrderPending}, nil)

	body := fmt.Sprintf(`{"productId":%q,"quantity":50,"assignedTo":"Line 2","deadline":"2026-11-30T00:00:00Z","productionScheduleId":""}`, testProductID)
	w := doJSON(workOrderRouter(store), "POST", "/api/workOrders/create", body, "")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Work Order created successfully")
	assert.Contains(t, w.Body.String(), `"status":"PENDING"`)
	store.AssertExpectations(t)
}

func TestWorkOrder_CreateValidation(t *testing.T) {
	store := new(MockWorkOrderStore)
	router := workOrderRouter(store)

	cases := map[string]string{
		"zero quantity":  fmt.Sprintf(`{"productId":%q,"quantity":0,"assignedTo":"A","deadline":"2026-11-30T00:00:00Z"}`, testProductID),
		"bad status":     fmt.Sprintf(`{"productId":%q,"quantity":1,"status":"DONE","assignedTo":"A","deadline":"2026-11-30T00:00:00Z"}`, testProductID),
		"no deadline":    fmt.Sprintf(`{"productId":%q,"quantity":1,"assignedTo":"A"}`, testProductID),
		"bad product id": `{"productId":"p-1","quantity":1,"assignedTo":"A","deadline":"2026-11-30T00:00:00Z"}`,
		"bad schedule":   fmt.Sprintf(`{"productId":%q,"quantity":1,"assignedTo":"A","deadline":"2026-11-30T00:00:00Z","productionScheduleId":"s"}`, testProductID),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := doJSON(router, "POST", "/api/workOrders/create", body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWorkOrder_Get(t *testing.T) {
	sched := testScheduleID
	store := new(MockWorkOrderStore)
	store.On("Get", mock.Anything, testProductID).Return(&models.WorkOrder{
		ID:                   testProductID,
		ProductionScheduleID: &sched,
		Product:              &models.ProductSummary{ID: "p", Name: "Gearbox"},
		ProdSched:            &models.ScheduleSummary{ID: sched, Status: models.ScheduleDelayed},
	}, nil)

	w := doJSON(workOrderRouter(store), "GET", "/api/workOrders/"+testProductID, nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"prodSched"`)
	assert.Contains(t, w.Body.String(), `"Gearbox"`)
}
