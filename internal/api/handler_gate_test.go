package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kaltroniz/Smart-Parking-System/internal/fleet"
)

func postScan(router http.Handler, uid, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/gate/scan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("X-User-ID", uid)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestPostGateScanOpened(t *testing.T) {
	stub := &stubBookings{scanOutcome: fleet.ScanOutcome{Status: "opened", SlotIndex: 2}}
	router := setupRouter(fleet.NewTable(6), stub)

	w := postScan(router, "user-b", `{"result":"decoded"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"opened","slotIndex":2}`, w.Body.String())
	assert.Equal(t, "user-b", stub.lastUID)
}

func TestPostGateScanNoBooking(t *testing.T) {
	stub := &stubBookings{scanOutcome: fleet.ScanOutcome{Status: "no_booking", SlotIndex: -1}}
	router := setupRouter(fleet.NewTable(6), stub)

	w := postScan(router, "user-z", `{"result":"decoded"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"no_booking","slotIndex":-1}`, w.Body.String())
}

func TestPostGateScanCancelled(t *testing.T) {
	stub := &stubBookings{scanOutcome: fleet.ScanOutcome{Status: "cancelled", SlotIndex: -1}}
	router := setupRouter(fleet.NewTable(6), stub)

	w := postScan(router, "user-a", `{"result":"cancelled"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"cancelled","slotIndex":-1}`, w.Body.String())
}

func TestPostGateScanRejectsUnknownResult(t *testing.T) {
	router := setupRouter(fleet.NewTable(6), &stubBookings{})

	w := postScan(router, "user-a", `{"result":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostGateScanRequiresUser(t *testing.T) {
	router := setupRouter(fleet.NewTable(6), &stubBookings{})

	w := postScan(router, "", `{"result":"decoded"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
