package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kaltroniz/Smart-Parking-System/internal/fleet"
	"github.com/Kaltroniz/Smart-Parking-System/internal/mw"
)

type gateScanRequest struct {
	Result string `json:"result" binding:"required"`
}

// PostGateScan handles POST /api/gate/scan. The scanner component reports
// either a decoded scan or a cancellation; decoded content is never inspected.
func (h *Handler) PostGateScan(c *gin.Context) {
	var req gateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := fleet.ScanResult(req.Result)
	if result != fleet.ScanDecoded && result != fleet.ScanCancelled {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "result must be decoded or cancelled"})
		return
	}

	outcome, err := h.bookings.ResolveGateScan(c.Request.Context(), mw.CurrentUser(c), result)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, outcome)
	case errors.Is(err, fleet.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
