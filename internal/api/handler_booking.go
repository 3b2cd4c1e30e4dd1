package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kaltroniz/Smart-Parking-System/internal/fleet"
	"github.com/Kaltroniz/Smart-Parking-System/internal/mw"
)

type bookingRequest struct {
	PaymentReference string `json:"payment_reference"`
}

// PostBooking handles POST /api/slots/{index}/booking.
func (h *Handler) PostBooking(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid slot index"})
		return
	}

	// Body is optional unless payment confirmation is enabled. ContentLength
	// is -1 for chunked requests, so anything non-zero gets bound; an empty
	// chunked body surfaces as EOF and is treated like no body at all.
	var req bookingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	uid := mw.CurrentUser(c)
	err = h.bookings.Request(c.Request.Context(), uid, index, req.PaymentReference)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"slotIndex": index})
	case errors.Is(err, fleet.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, fleet.ErrUnknownSlot):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, fleet.ErrSlotOccupied), errors.Is(err, fleet.ErrSlotBooked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, fleet.ErrPaymentRequired):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
