package registrations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ysrc26/footbal-squad-manager/internal/middleware"
	"github.com/ysrc26/footbal-squad-manager/internal/models"
	"github.com/ysrc26/footbal-squad-manager/pkg/response"
)

func newTestRouter(svc *Service, userID uuid.UUID, isResident bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextIsResident, isResident)
	})
	r.POST("/games/:id/register", h.Register)
	r.POST("/games/:id/cancel", h.Cancel)
	r.POST("/games/:id/eta", h.ReportETA)
	r.POST("/games/:id/late-swaps", h.ProcessLateSwaps)
	r.GET("/games/:id/roster", h.Roster)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Body) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed response.Body
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return w, parsed
}

func TestHandlerRegister(t *testing.T) {
	game := openGame(15, 10)
	svc := NewService(newMemLedger(game), nil, nil, nil)
	userID := uuid.New()
	r := newTestRouter(svc, userID, false)

	w, body := doJSON(t, r, http.MethodPost, "/games/"+game.ID.String()+"/register", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if !body.Success {
		t.Fatalf("success = false: %s", body.Error)
	}

	// Same player again conflicts.
	w, _ = doJSON(t, r, http.MethodPost, "/games/"+game.ID.String()+"/register", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", w.Code)
	}
}

func TestHandlerRegisterClosed(t *testing.T) {
	game := openGame(15, 10)
	game.Status = models.GameScheduled
	svc := NewService(newMemLedger(game), nil, nil, nil)
	r := newTestRouter(svc, uuid.New(), false)

	w, _ := doJSON(t, r, http.MethodPost, "/games/"+game.ID.String()+"/register", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestHandlerRegisterUnknownGame(t *testing.T) {
	svc := NewService(newMemLedger(), nil, nil, nil)
	r := newTestRouter(svc, uuid.New(), false)

	w, _ := doJSON(t, r, http.MethodPost, "/games/"+uuid.NewString()+"/register", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/games/not-a-uuid/register", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", w.Code)
	}
}

func TestHandlerCancel(t *testing.T) {
	game := openGame(15, 10)
	svc := NewService(newMemLedger(game), nil, nil, nil)
	userID := uuid.New()
	r := newTestRouter(svc, userID, false)

	w, _ := doJSON(t, r, http.MethodPost, "/games/"+game.ID.String()+"/cancel", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("not registered status = %d, want 404", w.Code)
	}

	doJSON(t, r, http.MethodPost, "/games/"+game.ID.String()+"/register", nil)
	w, body := doJSON(t, r, http.MethodPost, "/games/"+game.ID.String()+"/cancel", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !body.Success {
		t.Fatalf("success = false: %s", body.Error)
	}
}

func TestHandlerReportETAValidation(t *testing.T) {
	game := openGame(15, 10)
	svc := NewService(newMemLedger(game), nil, nil, nil)
	userID := uuid.New()
	r := newTestRouter(svc, userID, false)
	doJSON(t, r, http.MethodPost, "/games/"+game.ID.String()+"/register", nil)

	w, _ := doJSON(t, r, http.MethodPost, "/games/"+game.ID.String()+"/eta", map[string]int{"eta_minutes": -5})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative eta status = %d, want 400", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/games/"+game.ID.String()+"/eta", map[string]int{"eta_minutes": 15})
	if w.Code != http.StatusOK {
		t.Fatalf("eta status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestHandlerRoster(t *testing.T) {
	game := openGame(15, 10)
	ledger := newMemLedger(game)
	svc := NewService(ledger, nil, nil, nil)
	userID := uuid.New()
	r := newTestRouter(svc, userID, false)
	doJSON(t, r, http.MethodPost, "/games/"+game.ID.String()+"/register", nil)

	w, body := doJSON(t, r, http.MethodGet, "/games/"+game.ID.String()+"/roster", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	entries, ok := body.Data.([]interface{})
	if !ok || len(entries) != 1 {
		t.Fatalf("roster data = %#v, want one entry", body.Data)
	}
}

func TestHandlerLateSwaps(t *testing.T) {
	game := openGame(1, 5)
	ledger := newMemLedger(game)
	svc := NewService(ledger, nil, nil, nil)

	active := uuid.New()
	standby := uuid.New()
	rActive := newTestRouter(svc, active, false)
	rStandby := newTestRouter(svc, standby, false)
	doJSON(t, rActive, http.MethodPost, "/games/"+game.ID.String()+"/register", nil)
	doJSON(t, rStandby, http.MethodPost, "/games/"+game.ID.String()+"/register", nil)
	checkIn(t, ledger, game.ID, standby)

	w, body := doJSON(t, rActive, http.MethodPost, "/games/"+game.ID.String()+"/late-swaps", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	data, ok := body.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("sweep data = %#v", body.Data)
	}
	if got := data["swap_count"]; got != float64(1) {
		t.Fatalf("swap_count = %v, want 1", got)
	}
}
