package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/repos"
	"github.com/coursova/backend/internal/requestdata"
)

type EarningsHandler struct {
	log         *logger.Logger
	earningRepo repos.TeacherEarningRepo
}

func NewEarningsHandler(log *logger.Logger, earningRepo repos.TeacherEarningRepo) *EarningsHandler {
	return &EarningsHandler{
		log:         log.With("handler", "EarningsHandler"),
		earningRepo: earningRepo,
	}
}

// ListMine returns the calling teacher's ledger, newest period first.
func (h *EarningsHandler) ListMine(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	earnings, err := h.earningRepo.GetByTeacherIDs(c.Request.Context(), nil, []uuid.UUID{rd.UserID})
	if err != nil {
		h.log.Error("ListMine failed", "error", err, "teacher_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "load_earnings_failed", err)
		return
	}
	RespondOK(c, gin.H{"earnings": earnings})
}
