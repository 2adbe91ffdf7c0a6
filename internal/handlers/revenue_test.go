package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/services"
	"github.com/coursova/backend/internal/types"
)

type stubDistributor struct {
	result *services.DistributionResult
	err    error
}

func (s *stubDistributor) DistributeRevenue(ctx context.Context, period string) (*services.DistributionResult, error) {
	return s.result, s.err
}

type stubPoolRepo struct {
	pool *types.RevenuePool
	err  error
}

func (s *stubPoolRepo) UpsertByPeriod(ctx context.Context, tx *gorm.DB, pool *types.RevenuePool) (*types.RevenuePool, error) {
	return pool, nil
}

func (s *stubPoolRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, period string) (*types.RevenuePool, error) {
	return s.pool, s.err
}

func (s *stubPoolRepo) MarkDistributed(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	return false, nil
}

func newRevenueRouter(t *testing.T, dist *stubDistributor, pools *stubPoolRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	h := NewRevenueHandler(log, dist, pools)
	r := gin.New()
	r.POST("/admin/revenue/distribute", h.Distribute)
	r.GET("/admin/revenue/pools/:period", h.GetPool)
	return r
}

func postDistribute(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/admin/revenue/distribute", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDistributeStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid period", fmt.Errorf("wrap: %w", services.ErrInvalidPeriod), http.StatusBadRequest, "invalid_period"},
		{"already distributed", fmt.Errorf("wrap: %w", services.ErrPoolDistributed), http.StatusConflict, "already_distributed"},
		{"run in progress", fmt.Errorf("wrap: %w", services.ErrPoolBusy), http.StatusConflict, "distribution_in_progress"},
		{"unexpected failure", fmt.Errorf("db down"), http.StatusInternalServerError, "distribution_failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRevenueRouter(t, &stubDistributor{err: tc.err}, &stubPoolRepo{})
			w := postDistribute(t, r, `{"period":"2025-03"}`)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			var envelope ErrorEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestDistributeSuccess(t *testing.T) {
	dist := &stubDistributor{result: &services.DistributionResult{
		Period:      "2025-03",
		Distributed: 2,
		TotalAmount: 8.4,
	}}
	r := newRevenueRouter(t, dist, &stubPoolRepo{})

	w := postDistribute(t, r, `{"period":"2025-03"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var result services.DistributionResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if result.Distributed != 2 || result.TotalAmount != 8.4 {
		t.Fatalf("result = %+v", result)
	}
}

func TestDistributeMissingPeriod(t *testing.T) {
	r := newRevenueRouter(t, &stubDistributor{}, &stubPoolRepo{})
	if w := postDistribute(t, r, `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetPoolNotFound(t *testing.T) {
	r := newRevenueRouter(t, &stubDistributor{}, &stubPoolRepo{})
	req := httptest.NewRequest(http.MethodGet, "/admin/revenue/pools/2025-03", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
