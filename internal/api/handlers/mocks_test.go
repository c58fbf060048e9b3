package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jjm-manufacturing/core1-backend/internal/cache"
	"github.com/jjm-manufacturing/core1-backend/internal/middleware"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/services"
)

const (
	testProductID  = "5b1f8f7e-3f3a-4c1e-9a43-0d6b2f6e9a01"
	testScheduleID = "8c2d7a11-6a0e-4f52-b9a6-2e5c3d4f1b02"
	testForecastID = "1e9c4b6d-2a7f-4d38-8e51-7f0a9b3c5d03"
)

func quietLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

func newTestAuth() *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware("handler-secret", time.Hour, cache.NewInMemoryRevocationStore())
}

func tokenFor(t *testing.T, am *middleware.AuthMiddleware, role string) string {
	t.Helper()
	token, _, err := am.GenerateToken(&models.Account{ID: "acc-1", Email: "ops@jjm.test", Core: 1, Role: role})
	require.NoError(t, err)
	return token
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type MockAccountStore struct{ mock.Mock }

func (m *MockAccountStore) Create(ctx context.Context, account *models.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if acc := args.Get(0); acc != nil {
		return acc.(*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountStore) List(ctx context.Context) ([]models.Account, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockAccountStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAccountStore) UpdateEmail(ctx context.Context, id, newEmail string) error {
	return m.Called(ctx, id, newEmail).Error(0)
}

type MockProductStore struct{ mock.Mock }

func (m *MockProductStore) List(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductStore) Get(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) Create(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) Update(ctx context.Context, id string, req models.ProductRequest) (*models.Product, error) {
	args := m.Called(ctx, id, req)
	if p := args.Get(0); p != nil {
		return p.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockMaterialStore struct{ mock.Mock }

func (m *MockMaterialStore) List(ctx context.Context) ([]models.Material, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Material), args.Error(1)
}

func (m *MockMaterialStore) Get(ctx context.Context, id string) (*models.Material, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Material), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMaterialStore) Create(ctx context.Context, req models.MaterialRequest) (*models.Material, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*models.Material), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMaterialStore) Update(ctx context.Context, id string, req models.MaterialRequest) (*models.Material, error) {
	args := m.Called(ctx, id, req)
	if v := args.Get(0); v != nil {
		return v.(*models.Material), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMaterialStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockWorkOrderStore struct{ mock.Mock }

func (m *MockWorkOrderStore) List(ctx context.Context) ([]models.WorkOrder, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderStore) Get(ctx context.Context, id string) (*models.WorkOrder, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.WorkOrder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWorkOrderStore) Create(ctx context.Context, req models.WorkOrderRequest) (*models.WorkOrder, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*models.WorkOrder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWorkOrderStore) Update(ctx context.Context, id string, req models.WorkOrderRequest) (*models.WorkOrder, error) {
	args := m.Called(ctx, id, req)
	if v := args.Get(0); v != nil {
		return v.(*models.WorkOrder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWorkOrderStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockScheduleStore struct{ mock.Mock }

func (m *MockScheduleStore) List(ctx context.Context) ([]models.ProductionSchedule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ProductionSchedule), args.Error(1)
}

func (m *MockScheduleStore) Get(ctx context.Context, id string) (*models.ProductionSchedule, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.ProductionSchedule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockScheduleStore) Create(ctx context.Context, req models.ScheduleRequest) (*models.ProductionSchedule, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*models.ProductionSchedule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockScheduleStore) Update(ctx context.Context, id string, req models.ScheduleRequest) (*models.ProductionSchedule, error) {
	args := m.Called(ctx, id, req)
	if v := args.Get(0); v != nil {
		return v.(*models.ProductionSchedule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockScheduleStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockForecastStore struct{ mock.Mock }

func (m *MockForecastStore) List(ctx context.Context) ([]models.DemandForecast, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.DemandForecast), args.Error(1)
}

func (m *MockForecastStore) Get(ctx context.Context, id string) (*models.DemandForecast, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.DemandForecast), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockForecastStore) Create(ctx context.Context, req models.DemandForecastRequest) (*models.DemandForecast, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*models.DemandForecast), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockForecastStore) Update(ctx context.Context, id string, req models.DemandForecastRequest) (*models.DemandForecast, error) {
	args := m.Called(ctx, id, req)
	if v := args.Get(0); v != nil {
		return v.(*models.DemandForecast), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockForecastStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockForecastStore) Observations(ctx context.Context) ([]models.Observation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Observation), args.Error(1)
}

type MockAnalyzer struct{ mock.Mock }

func (m *MockAnalyzer) Analyze(ctx context.Context, observations []models.Observation, windowSize int) (*services.AnalysisResult, error) {
	args := m.Called(ctx, observations, windowSize)
	if v := args.Get(0); v != nil {
		return v.(*services.AnalysisResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockScheduleNotifier struct{ mock.Mock }

func (m *MockScheduleNotifier) NotifySchedule(ctx context.Context, schedule *models.ProductionSchedule) {
	m.Called(ctx, schedule)
}

type countingAlerts struct{ statuses []string }

func (a *countingAlerts) RecordScheduleAlert(status string) {
	a.statuses = append(a.statuses, status)
}
