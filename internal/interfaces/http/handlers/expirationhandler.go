package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gymdesk/gymdesk/internal/application/membership/usecases"
	"github.com/gymdesk/gymdesk/internal/shared/errors"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
	"github.com/gymdesk/gymdesk/internal/shared/utils"
)

type ExpirationHandler struct {
	runCycleUC runExpirationCycleUseCase
	logger     logger.Interface
}

func NewExpirationHandler(runCycleUC runExpirationCycleUseCase, log logger.Interface) *ExpirationHandler {
	return &ExpirationHandler{
		runCycleUC: runCycleUC,
		logger:     log,
	}
}

// RunCycle handles POST /api/admin/expiration-cycles. The cycle runs
// synchronously and the report is returned; ?dry_run=true skips writes
// and notices.
func (h *ExpirationHandler) RunCycle(c *gin.Context) {
	dryRun := false
	if raw := c.Query("dry_run"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid dry_run value", raw))
			return
		}
		dryRun = v
	}

	run := h.runCycleUC.Execute
	if dryRun {
		run = h.runCycleUC.DryRun
	}

	report, err := run(c.Request.Context())
	if err != nil {
		if usecases.IsCycleInProgress(err) {
			utils.ErrorResponseWithError(c, errors.NewConflictError("Expiration cycle already in progress").WithCause(err))
			return
		}
		h.logger.Errorw("expiration cycle failed", "dry_run", dryRun, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("expiration cycle triggered over http",
		"run_id", report.RunID,
		"dry_run", dryRun,
		"notified", len(report.Notified),
		"suspended", len(report.Suspended),
		"failed", len(report.Failed),
	)

	utils.SuccessResponse(c, http.StatusOK, "Expiration cycle completed", report)
}
