package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/hrhub/internal/auth"
	"github.com/geocoder89/hrhub/internal/cache"
	"github.com/geocoder89/hrhub/internal/config"
	"github.com/geocoder89/hrhub/internal/db"
	httpx "github.com/geocoder89/hrhub/internal/http"
	"github.com/geocoder89/hrhub/internal/http/handlers"
	"github.com/geocoder89/hrhub/internal/http/middlewares"
	"github.com/geocoder89/hrhub/internal/observability"
	"github.com/geocoder89/hrhub/internal/repo/memory"
	"github.com/geocoder89/hrhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	stats := service.NewStatsCache(cache.NewMemory(time.Minute), time.Minute, prom, nil)
	tokens := auth.NewManager("router-test-secret", time.Hour)

	users := service.NewUserService(service.UserServiceDeps{
		Users:       store.Users(),
		Leaves:      store.Leaves(),
		Projects:    store.Projects(),
		Departments: store.Departments(),
		UoW:         store,
		Tokens:      tokens,
		Stats:       stats,
		Prom:        prom,
	})

	created, err := db.EnsureAdminUser(context.Background(), store.Users(), config.Config{
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
		AdminName:     "Admin",
	})
	if err != nil || !created {
		t.Fatalf("seed admin: created=%v err=%v", created, err)
	}

	return httpx.NewRouter(httpx.Deps{
		Env:          "test",
		Prom:         prom,
		Gatherer:     reg,
		CORSOrigins:  []string{"*"},
		MaxBodyBytes: 1 << 20,
		AuthLimiter:  middlewares.NewRateLimiter(100, time.Minute),
		Tokens:       tokens,
		Users:        users,
		Leaves:       service.NewLeaveService(store.Leaves(), stats, prom, false),
		Projects:     service.NewProjectService(store.Projects(), store.Users(), stats),
		Departments:  service.NewDepartmentService(store.Departments(), stats),
		Checks:       []handlers.Check{{Name: "store", Ping: store.Ping}},
	})
}

func do(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expect(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func login(t *testing.T, r *gin.Engine, email, password string) authBody {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	expect(t, w, http.StatusOK)
	return decode[authBody](t, w)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	expect(t, do(t, r, http.MethodGet, "/healthz", "", ""), http.StatusOK)
	expect(t, do(t, r, http.MethodGet, "/readyz", "", ""), http.StatusOK)

	w := do(t, r, http.MethodGet, "/metrics", "", "")
	expect(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "hrhub_http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}

func TestRouter_AuthGate(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/leaves/my-leaves", "", "")
	expect(t, w, http.StatusUnauthorized)

	env := decode[struct {
		Error handlers.APIError `json:"error"`
	}](t, w)
	if env.Error.Code != "unauthorized" || env.Error.RequestID == "" {
		t.Fatalf("unexpected envelope: %+v", env.Error)
	}

	expect(t, do(t, r, http.MethodGet, "/api/leaves/my-leaves", "not-a-token", ""), http.StatusUnauthorized)

	w = do(t, r, http.MethodPost, "/api/auth/login", "", `{"email":"`+adminEmail+`","password":"wrong-pass"}`)
	expect(t, w, http.StatusUnauthorized)
}

func TestRouter_RegisterForcesEmployeeRole(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/auth/register", "",
		`{"name":"Eve","email":"eve@example.com","password":"secret1","role":"admin"}`)
	expect(t, w, http.StatusCreated)

	got := decode[authBody](t, w)
	if got.User.Role != "employee" || got.Token == "" {
		t.Fatalf("got role=%q token=%q", got.User.Role, got.Token)
	}

	// employees are kept off staff routes
	expect(t, do(t, r, http.MethodGet, "/api/leaves/pending", got.Token, ""), http.StatusForbidden)
	expect(t, do(t, r, http.MethodGet, "/api/auth/users", got.Token, ""), http.StatusForbidden)

	// duplicate email differing only in case
	w = do(t, r, http.MethodPost, "/api/auth/register", "",
		`{"name":"Eve Two","email":"EVE@example.com","password":"secret1"}`)
	expect(t, w, http.StatusConflict)
}

func TestRouter_LeaveLifecycle(t *testing.T) {
	r := newTestRouter(t)
	admin := login(t, r, adminEmail, adminPassword)

	w := do(t, r, http.MethodPost, "/api/auth/users", admin.Token,
		`{"name":"Bob","email":"bob@example.com","password":"secret1"}`)
	expect(t, w, http.StatusCreated)
	bob := login(t, r, "bob@example.com", "secret1")

	w = do(t, r, http.MethodPost, "/api/leaves", bob.Token,
		`{"startDate":"2026-03-01","endDate":"2026-02-01","reason":"trip","leaveType":"vacation"}`)
	expect(t, w, http.StatusBadRequest)

	w = do(t, r, http.MethodPost, "/api/leaves", bob.Token,
		`{"startDate":"2026-03-01","endDate":"2026-03-03","reason":"trip","leaveType":"vacation"}`)
	expect(t, w, http.StatusCreated)
	first := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, w)
	if first.Status != "pending" {
		t.Fatalf("new leave status = %q", first.Status)
	}

	w = do(t, r, http.MethodGet, "/api/leaves/pending", admin.Token, "")
	expect(t, w, http.StatusOK)
	if n := len(decode[[]json.RawMessage](t, w)); n != 1 {
		t.Fatalf("pending = %d, want 1", n)
	}

	expect(t, do(t, r, http.MethodPut, "/api/leaves/"+first.ID+"/status", admin.Token, `{"status":"pending"}`), http.StatusBadRequest)
	expect(t, do(t, r, http.MethodPut, "/api/leaves/"+first.ID+"/status", admin.Token, `{"status":"approved"}`), http.StatusOK)

	// decided requests cannot be cancelled
	expect(t, do(t, r, http.MethodDelete, "/api/leaves/"+first.ID, bob.Token, ""), http.StatusNotFound)

	w = do(t, r, http.MethodGet, "/api/auth/employee/stats", bob.Token, "")
	expect(t, w, http.StatusOK)
	st := decode[struct {
		TotalLeaves     int `json:"totalLeaves"`
		ApprovedLeaves  int `json:"approvedLeaves"`
		RemainingLeaves int `json:"remainingLeaves"`
	}](t, w)
	if st.TotalLeaves != 1 || st.ApprovedLeaves != 1 || st.RemainingLeaves != 19 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	w = do(t, r, http.MethodPost, "/api/leaves", bob.Token,
		`{"startDate":"2026-04-01","endDate":"2026-04-01","reason":"dentist","leaveType":"sick"}`)
	expect(t, w, http.StatusCreated)
	second := decode[struct {
		ID string `json:"id"`
	}](t, w)

	// someone else's request looks absent
	w = do(t, r, http.MethodPost, "/api/auth/register", "",
		`{"name":"Mallory","email":"mallory@example.com","password":"secret1"}`)
	expect(t, w, http.StatusCreated)
	mallory := decode[authBody](t, w)
	expect(t, do(t, r, http.MethodDelete, "/api/leaves/"+second.ID, mallory.Token, ""), http.StatusNotFound)

	expect(t, do(t, r, http.MethodDelete, "/api/leaves/"+second.ID, bob.Token, ""), http.StatusOK)

	w = do(t, r, http.MethodGet, "/api/leaves/my-leaves", bob.Token, "")
	expect(t, w, http.StatusOK)
	if n := len(decode[[]json.RawMessage](t, w)); n != 1 {
		t.Fatalf("my leaves = %d, want 1", n)
	}
}

func TestRouter_DeleteEmployeeCascades(t *testing.T) {
	r := newTestRouter(t)
	admin := login(t, r, adminEmail, adminPassword)

	w := do(t, r, http.MethodPost, "/api/auth/register", "",
		`{"name":"Carol","email":"carol@example.com","password":"secret1"}`)
	expect(t, w, http.StatusCreated)
	carol := decode[authBody](t, w)

	w = do(t, r, http.MethodPost, "/api/auth/register", "",
		`{"name":"Dan","email":"dan@example.com","password":"secret1"}`)
	expect(t, w, http.StatusCreated)
	dan := decode[authBody](t, w)

	expect(t, do(t, r, http.MethodPost, "/api/leaves", carol.Token,
		`{"startDate":"2026-05-01","endDate":"2026-05-02","reason":"move","leaveType":"personal"}`), http.StatusCreated)

	w = do(t, r, http.MethodPost, "/api/projects", admin.Token,
		`{"name":"Solo","startDate":"2026-01-01","employees":["`+carol.User.ID+`"]}`)
	expect(t, w, http.StatusCreated)
	solo := decode[struct {
		ID string `json:"id"`
	}](t, w)

	w = do(t, r, http.MethodPost, "/api/projects", admin.Token,
		`{"name":"Shared","startDate":"2026-01-01","employees":["`+carol.User.ID+`","`+dan.User.ID+`"]}`)
	expect(t, w, http.StatusCreated)
	shared := decode[struct {
		ID string `json:"id"`
	}](t, w)

	// staff accounts are protected and self-delete is refused
	expect(t, do(t, r, http.MethodDelete, "/api/auth/users/"+admin.User.ID, admin.Token, ""), http.StatusForbidden)

	w = do(t, r, http.MethodDelete, "/api/auth/users/"+carol.User.ID, admin.Token, "")
	expect(t, w, http.StatusOK)
	res := decode[struct {
		Deleted service.DeleteResult `json:"deleted"`
	}](t, w)
	want := service.DeleteResult{LeavesDeleted: 1, ProjectsUpdated: 1, ProjectsDeleted: 1}
	if res.Deleted != want {
		t.Fatalf("deleted = %+v, want %+v", res.Deleted, want)
	}

	// the token outlives the account but no longer authenticates
	expect(t, do(t, r, http.MethodGet, "/api/leaves/my-leaves", carol.Token, ""), http.StatusUnauthorized)

	expect(t, do(t, r, http.MethodGet, "/api/projects/"+solo.ID, admin.Token, ""), http.StatusNotFound)

	w = do(t, r, http.MethodGet, "/api/projects/"+shared.ID, admin.Token, "")
	expect(t, w, http.StatusOK)
	p := decode[struct {
		Employees []struct {
			ID string `json:"id"`
		} `json:"employees"`
	}](t, w)
	if len(p.Employees) != 1 || p.Employees[0].ID != dan.User.ID {
		t.Fatalf("shared roster = %+v", p.Employees)
	}

	expect(t, do(t, r, http.MethodDelete, "/api/auth/users/"+carol.User.ID, admin.Token, ""), http.StatusNotFound)
}

func TestRouter_ProjectRoster(t *testing.T) {
	r := newTestRouter(t)
	admin := login(t, r, adminEmail, adminPassword)

	w := do(t, r, http.MethodPost, "/api/auth/register", "",
		`{"name":"Erin","email":"erin@example.com","password":"secret1"}`)
	expect(t, w, http.StatusCreated)
	erin := decode[authBody](t, w)

	w = do(t, r, http.MethodPost, "/api/projects", admin.Token,
		`{"name":"Empty","startDate":"2026-01-01","status":"planning"}`)
	expect(t, w, http.StatusCreated)
	proj := decode[struct {
		ID string `json:"id"`
	}](t, w)

	assign := "/api/projects/" + proj.ID + "/assign/" + erin.User.ID
	expect(t, do(t, r, http.MethodPost, assign, erin.Token, ""), http.StatusForbidden)
	expect(t, do(t, r, http.MethodPost, assign, admin.Token, ""), http.StatusOK)

	w = do(t, r, http.MethodPost, assign, admin.Token, "")
	expect(t, w, http.StatusOK)
	p := decode[struct {
		Employees []json.RawMessage `json:"employees"`
	}](t, w)
	if len(p.Employees) != 1 {
		t.Fatalf("assign twice gave %d members", len(p.Employees))
	}

	expect(t, do(t, r, http.MethodPost, "/api/projects/"+proj.ID+"/assign/missing", admin.Token, ""), http.StatusNotFound)

	w = do(t, r, http.MethodGet, "/api/projects/employee", erin.Token, "")
	expect(t, w, http.StatusOK)
	if n := len(decode[[]json.RawMessage](t, w)); n != 1 {
		t.Fatalf("my projects = %d, want 1", n)
	}

	// removing the last member keeps the project
	w = do(t, r, http.MethodPost, "/api/projects/"+proj.ID+"/remove/"+erin.User.ID, admin.Token, "")
	expect(t, w, http.StatusOK)
	expect(t, do(t, r, http.MethodGet, "/api/projects/"+proj.ID, admin.Token, ""), http.StatusOK)

	w = do(t, r, http.MethodGet, "/api/projects/stats", admin.Token, "")
	expect(t, w, http.StatusOK)
	st := decode[struct {
		TotalProjects    int `json:"totalProjects"`
		PlanningProjects int `json:"planningProjects"`
	}](t, w)
	if st.TotalProjects != 1 || st.PlanningProjects != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	expect(t, do(t, r, http.MethodGet, "/api/projects/stats", erin.Token, ""), http.StatusForbidden)
}

func TestRouter_ProjectUpdateClearsEndDate(t *testing.T) {
	r := newTestRouter(t)
	admin := login(t, r, adminEmail, adminPassword)

	w := do(t, r, http.MethodPost, "/api/projects", admin.Token,
		`{"name":"Bounded","startDate":"2026-01-01","endDate":"2026-06-01","budget":100}`)
	expect(t, w, http.StatusCreated)
	proj := decode[struct {
		ID string `json:"id"`
	}](t, w)

	w = do(t, r, http.MethodPut, "/api/projects/"+proj.ID, admin.Token, `{"endDate":null,"budget":null}`)
	expect(t, w, http.StatusOK)

	w = do(t, r, http.MethodGet, "/api/projects/"+proj.ID, admin.Token, "")
	expect(t, w, http.StatusOK)
	got := decode[map[string]json.RawMessage](t, w)
	if _, ok := got["endDate"]; ok {
		t.Fatalf("endDate still present: %s", got["endDate"])
	}
	if _, ok := got["budget"]; ok {
		t.Fatalf("budget still present: %s", got["budget"])
	}

	expect(t, do(t, r, http.MethodPut, "/api/projects/"+proj.ID, admin.Token, `{"budget":-5}`), http.StatusBadRequest)
}

func TestRouter_ETagOnProjectList(t *testing.T) {
	r := newTestRouter(t)
	admin := login(t, r, adminEmail, adminPassword)

	w := do(t, r, http.MethodGet, "/api/projects", admin.Token, "")
	expect(t, w, http.StatusOK)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+admin.Token)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	expect(t, w, http.StatusNotModified)
}

func TestRouter_Departments(t *testing.T) {
	r := newTestRouter(t)
	admin := login(t, r, adminEmail, adminPassword)

	expect(t, do(t, r, http.MethodPost, "/api/departments", admin.Token, `{"name":"Engineering"}`), http.StatusCreated)
	expect(t, do(t, r, http.MethodPost, "/api/departments", admin.Token, `{"name":"engineering"}`), http.StatusConflict)

	w := do(t, r, http.MethodGet, "/api/auth/dashboard/stats", admin.Token, "")
	expect(t, w, http.StatusOK)
	st := decode[service.DashboardStats](t, w)
	if st.Departments != 1 || st.TotalEmployees != 1 {
		t.Fatalf("unexpected dashboard: %+v", st)
	}
}
