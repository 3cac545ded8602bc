package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gymdesk/gymdesk/internal/shared/errors"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
	"github.com/gymdesk/gymdesk/internal/shared/utils"
)

type MembershipHandler struct {
	getWindowUC getMembershipWindowUseCase
	logger      logger.Interface
}

func NewMembershipHandler(getWindowUC getMembershipWindowUseCase, log logger.Interface) *MembershipHandler {
	return &MembershipHandler{
		getWindowUC: getWindowUC,
		logger:      log,
	}
}

// GetMembershipWindow handles GET /api/members/:id/membership. An
// indeterminate window is still a 200 with a null end_date.
func (h *MembershipHandler) GetMembershipWindow(c *gin.Context) {
	memberID, err := parseMemberID(c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	window, err := h.getWindowUC.Execute(c.Request.Context(), memberID)
	if err != nil {
		if errors.GetAppError(err) == nil {
			h.logger.Errorw("failed to resolve membership window",
				"member_id", memberID,
				"error", err,
			)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", window)
}

func parseMemberID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("Invalid member ID", raw)
	}
	return uint(id), nil
}
