package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cesizen/internal/diagnostic"
	"cesizen/internal/domain"
	"cesizen/internal/service"
)

type stubStressEventRepo struct {
	events  []diagnostic.StressEvent
	listErr error
}

func (s *stubStressEventRepo) List(_ context.Context) ([]diagnostic.StressEvent, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]diagnostic.StressEvent(nil), s.events...), nil
}

func (s *stubStressEventRepo) Create(_ context.Context, event diagnostic.StressEvent) (diagnostic.StressEvent, error) {
	event.ID = len(s.events) + 100
	s.events = append(s.events, event)
	return event, nil
}

func (s *stubStressEventRepo) Update(_ context.Context, event diagnostic.StressEvent) error {
	for i := range s.events {
		if s.events[i].ID == event.ID {
			s.events[i] = event
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (s *stubStressEventRepo) Delete(_ context.Context, id int) error {
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (s *stubStressEventRepo) UpsertMany(_ context.Context, events []diagnostic.StressEvent) error {
	s.events = append([]diagnostic.StressEvent(nil), events...)
	return nil
}

type stubDiagnosticRepo struct {
	records map[string]domain.DiagnosticRecord
	seq     int
}

func newStubDiagnosticRepo() *stubDiagnosticRepo {
	return &stubDiagnosticRepo{records: make(map[string]domain.DiagnosticRecord)}
}

func (s *stubDiagnosticRepo) Save(_ context.Context, userID string, result diagnostic.Result) (string, error) {
	s.seq++
	id := fmt.Sprintf("00000000-0000-0000-0000-%012d", s.seq)
	s.records[id] = domain.DiagnosticRecord{
		ID:         id,
		UserID:     userID,
		TotalScore: result.TotalScore,
		RiskTier:   result.RiskTier,
		EventIDs:   result.EventIDs(),
		CreatedAt:  result.CreatedAt,
	}
	return id, nil
}

func (s *stubDiagnosticRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.DiagnosticRecord, error) {
	var out []domain.DiagnosticRecord
	for _, r := range s.records {
		if r.UserID == userID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubDiagnosticRepo) GetByID(_ context.Context, id string) (domain.DiagnosticRecord, error) {
	r, ok := s.records[id]
	if !ok {
		return domain.DiagnosticRecord{}, pgx.ErrNoRows
	}
	return r, nil
}

func (s *stubDiagnosticRepo) Delete(_ context.Context, userID, id string) error {
	r, ok := s.records[id]
	if !ok || r.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(s.records, id)
	return nil
}

type diagnosticFixture struct {
	events  *stubStressEventRepo
	records *stubDiagnosticRepo
	jwt     *service.JWTService
	router  *gin.Engine
}

func setupDiagnosticRouter() diagnosticFixture {
	gin.SetMode(gin.TestMode)
	events := &stubStressEventRepo{events: diagnostic.DefaultEvents()}
	records := newStubDiagnosticRepo()
	jwtSvc := newTestJWT()

	catalog := service.NewCatalogService(zap.NewNop(), events, nil, time.Minute, nil)
	diags := service.NewDiagnosticService(zap.NewNop(), diagnostic.NewEngine(), catalog, records, nil, nil)
	h := NewDiagnosticHandler(zap.NewNop(), catalog, diags)

	r := gin.New()
	r.GET("/diagnostic/events", h.ListEvents)
	r.POST("/diagnostic", OptionalJWTAuthMiddleware(jwtSvc), h.Submit)
	r.GET("/diagnostic/history", JWTAuthMiddleware(jwtSvc), h.History)
	r.GET("/diagnostic/history/:id", JWTAuthMiddleware(jwtSvc), h.Get)
	r.DELETE("/diagnostic/history/:id", JWTAuthMiddleware(jwtSvc), h.Delete)
	admin := r.Group("/admin", JWTAuthMiddleware(jwtSvc), RequireRole(domain.RoleAdmin))
	admin.POST("/stress-events", h.CreateEvent)
	admin.PUT("/stress-events/:id", h.UpdateEvent)
	admin.DELETE("/stress-events/:id", h.DeleteEvent)
	return diagnosticFixture{events: events, records: records, jwt: jwtSvc, router: r}
}

type submissionResponse struct {
	Result struct {
		TotalScore     int                      `json:"total_score"`
		RiskTier       diagnostic.RiskTier      `json:"risk_tier"`
		RiskLabel      string                   `json:"risk_label"`
		SelectedEvents []diagnostic.StressEvent `json:"selected_events"`
	} `json:"result"`
	RecordID        string           `json:"record_id"`
	Recommendations []domain.Article `json:"recommendations"`
}

func TestDiagnosticHandlerListEvents(t *testing.T) {
	f := setupDiagnosticRouter()

	rec := performRequest(f.router, http.MethodGet, "/diagnostic/events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Events     []diagnostic.StressEvent `json:"events"`
		Categories []categoryView           `json:"categories"`
	}
	decodeBody(t, rec, &body)
	if len(body.Events) != len(diagnostic.DefaultEvents()) {
		t.Fatalf("expected full catalog, got %d events", len(body.Events))
	}
	if len(body.Categories) != len(diagnostic.Categories()) {
		t.Fatalf("expected categories, got %d", len(body.Categories))
	}
}

func TestDiagnosticHandlerSubmit_Anonymous(t *testing.T) {
	f := setupDiagnosticRouter()

	rec := performRequest(f.router, http.MethodPost, "/diagnostic", map[string][]int{
		"event_ids": {1, 2},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body submissionResponse
	decodeBody(t, rec, &body)
	if body.Result.TotalScore != 173 || body.Result.RiskTier != diagnostic.RiskModerate {
		t.Fatalf("unexpected result: %+v", body.Result)
	}
	if body.Result.RiskLabel != "Risque modéré" {
		t.Fatalf("unexpected label %q", body.Result.RiskLabel)
	}
	if body.RecordID != "" || len(f.records.records) != 0 {
		t.Fatalf("anonymous submission must not be stored")
	}
	if body.Recommendations == nil {
		t.Fatalf("expected empty recommendations array, got null")
	}
}

func TestDiagnosticHandlerSubmit_AuthenticatedIsStored(t *testing.T) {
	f := setupDiagnosticRouter()
	token := issueAccess(t, f.jwt, domain.User{ID: "u1", Email: "user@example.com", Role: domain.RoleUser})

	rec := performAuthedRequest(f.router, http.MethodPost, "/diagnostic", token, map[string][]int{
		"event_ids": {8},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body submissionResponse
	decodeBody(t, rec, &body)
	if body.RecordID == "" || body.Result.RiskTier != diagnostic.RiskLow {
		t.Fatalf("unexpected submission: %+v", body)
	}

	history := performAuthedRequest(f.router, http.MethodGet, "/diagnostic/history", token, nil)
	var list struct {
		Diagnostics []domain.DiagnosticRecord `json:"diagnostics"`
	}
	decodeBody(t, history, &list)
	if len(list.Diagnostics) != 1 || list.Diagnostics[0].TotalScore != 47 {
		t.Fatalf("unexpected history: %+v", list.Diagnostics)
	}

	get := performAuthedRequest(f.router, http.MethodGet, "/diagnostic/history/"+body.RecordID, token, nil)
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", get.Code)
	}

	other := issueAccess(t, f.jwt, domain.User{ID: "u2", Email: "other@example.com", Role: domain.RoleUser})
	if rec := performAuthedRequest(f.router, http.MethodGet, "/diagnostic/history/"+body.RecordID, other, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign record, got %d", rec.Code)
	}

	del := performAuthedRequest(f.router, http.MethodDelete, "/diagnostic/history/"+body.RecordID, token, nil)
	if del.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", del.Code)
	}
}

func TestDiagnosticHandlerSubmit_EmptySelection(t *testing.T) {
	f := setupDiagnosticRouter()

	rec := performRequest(f.router, http.MethodPost, "/diagnostic", map[string][]int{
		"event_ids": {},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec.Body.String() != `{"error":"select at least one event"}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestDiagnosticHandlerSubmit_CatalogUnavailable(t *testing.T) {
	f := setupDiagnosticRouter()
	f.events.listErr = errors.New("connection refused")

	rec := performRequest(f.router, http.MethodPost, "/diagnostic", map[string][]int{
		"event_ids": {1},
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Body.String() != `{"error":"stress event catalog unavailable"}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestDiagnosticHandlerHistory_RequiresAuth(t *testing.T) {
	f := setupDiagnosticRouter()

	if rec := performRequest(f.router, http.MethodGet, "/diagnostic/history", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestDiagnosticHandlerGet_InvalidID(t *testing.T) {
	f := setupDiagnosticRouter()
	token := issueAccess(t, f.jwt, domain.User{ID: "u1", Email: "user@example.com", Role: domain.RoleUser})

	if rec := performAuthedRequest(f.router, http.MethodGet, "/diagnostic/history/not-a-uuid", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDiagnosticHandlerAdminEvents(t *testing.T) {
	f := setupDiagnosticRouter()
	admin := issueAccess(t, f.jwt, domain.User{ID: "a1", Email: "admin@example.com", Role: domain.RoleAdmin})
	user := issueAccess(t, f.jwt, domain.User{ID: "u1", Email: "user@example.com", Role: domain.RoleUser})
	payload := map[string]any{"label": "Burn-out", "weight": 55, "category": diagnostic.CategoryWork}

	if rec := performAuthedRequest(f.router, http.MethodPost, "/admin/stress-events", user, payload); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user, got %d", rec.Code)
	}

	rec := performAuthedRequest(f.router, http.MethodPost, "/admin/stress-events", admin, payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	bad := performAuthedRequest(f.router, http.MethodPost, "/admin/stress-events", admin, map[string]any{
		"label": "Inconnu", "weight": 20, "category": "inconnue",
	})
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", bad.Code)
	}

	if rec := performAuthedRequest(f.router, http.MethodDelete, "/admin/stress-events/9999", admin, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := performAuthedRequest(f.router, http.MethodDelete, "/admin/stress-events/1", admin, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
