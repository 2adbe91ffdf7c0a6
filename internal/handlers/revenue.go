package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/repos"
	"github.com/coursova/backend/internal/services"
)

type RevenueHandler struct {
	log         *logger.Logger
	distributor services.RevenueDistributor
	poolRepo    repos.RevenuePoolRepo
}

func NewRevenueHandler(log *logger.Logger, distributor services.RevenueDistributor, poolRepo repos.RevenuePoolRepo) *RevenueHandler {
	return &RevenueHandler{
		log:         log.With("handler", "RevenueHandler"),
		distributor: distributor,
		poolRepo:    poolRepo,
	}
}

type distributeRequest struct {
	Period string `json:"period" binding:"required"`
}

// Distribute triggers a distribution run for one period.
// 400 malformed period, 409 already distributed or run in progress, 500 otherwise.
func (h *RevenueHandler) Distribute(c *gin.Context) {
	var req distributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.distributor.DistributeRevenue(c.Request.Context(), req.Period)
	switch {
	case errors.Is(err, services.ErrInvalidPeriod):
		RespondError(c, http.StatusBadRequest, "invalid_period", err)
	case errors.Is(err, services.ErrPoolDistributed):
		RespondError(c, http.StatusConflict, "already_distributed", err)
	case errors.Is(err, services.ErrPoolBusy):
		RespondError(c, http.StatusConflict, "distribution_in_progress", err)
	case err != nil:
		h.log.Error("Distribute failed", "error", err, "period", req.Period)
		RespondError(c, http.StatusInternalServerError, "distribution_failed", err)
	default:
		RespondOK(c, result)
	}
}

// GetPool returns the computed pool for one period.
func (h *RevenueHandler) GetPool(c *gin.Context) {
	period := c.Param("period")
	pool, err := h.poolRepo.GetByPeriod(c.Request.Context(), nil, period)
	if err != nil {
		h.log.Error("GetPool failed", "error", err, "period", period)
		RespondError(c, http.StatusInternalServerError, "load_pool_failed", err)
		return
	}
	if pool == nil {
		RespondError(c, http.StatusNotFound, "pool_not_found", fmt.Errorf("no revenue pool for period %s", period))
		return
	}
	RespondOK(c, gin.H{"pool": pool})
}
