package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kaltroniz/Smart-Parking-System/internal/mw"
)

// slotResponse is one slot of the fleet snapshot. Owner identity is never
// exposed; callers only learn whether the booking is their own.
type slotResponse struct {
	Index            int    `json:"index"`
	Status           string `json:"status"`
	Booked           bool   `json:"booked"`
	Mine             bool   `json:"mine"`
	RemainingSeconds int    `json:"remainingSeconds"`
	RemainingDisplay string `json:"remainingDisplay,omitempty"`
}

// GetSlots handles GET /api/slots: the ordered slot table snapshot.
func (h *Handler) GetSlots(c *gin.Context) {
	uid := mw.CurrentUser(c)

	slots := h.table.Snapshot()
	response := make([]slotResponse, len(slots))
	for i, slot := range slots {
		r := slotResponse{
			Index:  slot.Index,
			Status: string(slot.Status),
		}
		if slot.Booking != nil {
			r.Booked = true
			r.Mine = uid != "" && slot.Booking.UID == uid
			r.RemainingSeconds = slot.Remaining
			r.RemainingDisplay = fmt.Sprintf("%02d:%02d", slot.Remaining/60, slot.Remaining%60)
		}
		response[i] = r
	}
	c.JSON(http.StatusOK, response)
}
