package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/services"
)

type SubscriptionHandler struct {
	log                 *logger.Logger
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(log *logger.Logger, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		log:                 log.With("handler", "SubscriptionHandler"),
		subscriptionService: subscriptionService,
	}
}

type subscribeRequest struct {
	Amount float64 `json:"amount"`
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	sub, err := h.subscriptionService.Activate(c.Request.Context(), req.Amount)
	if err != nil {
		h.log.Warn("Subscribe failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "subscribe_failed", err)
		return
	}
	RespondOK(c, gin.H{"subscription": sub})
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	subID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_subscription_id", err)
		return
	}

	sub, err := h.subscriptionService.Cancel(c.Request.Context(), subID)
	if err != nil {
		h.log.Warn("Cancel failed", "error", err, "subscription_id", subID)
		RespondError(c, http.StatusInternalServerError, "cancel_failed", err)
		return
	}
	RespondOK(c, gin.H{"subscription": sub})
}

func (h *SubscriptionHandler) ListMine(c *gin.Context) {
	subs, err := h.subscriptionService.ListForUser(c.Request.Context())
	if err != nil {
		h.log.Warn("ListMine failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "load_subscriptions_failed", err)
		return
	}
	RespondOK(c, gin.H{"subscriptions": subs})
}
