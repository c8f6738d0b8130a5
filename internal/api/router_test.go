package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/api/handler"
	"github.com/flappyv/platform/internal/core/domain"
	"github.com/flappyv/platform/internal/core/ports"
	"github.com/flappyv/platform/internal/core/service"
	"github.com/flappyv/platform/internal/infrastructure/uploads"
	"github.com/flappyv/platform/internal/pkg/lifecycle"
	"github.com/flappyv/platform/internal/pkg/token"
)

const routerSecret = "router-test-secret-0123456789abcdef"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*domain.User)}
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return nil, domain.ErrUserExists
	}
	stored := *user
	stored.ID = fmt.Sprintf("u%d", len(r.users)+1)
	r.users[stored.Email] = &stored
	clone := stored
	return &clone, nil
}

func (r *memUsers) SetAdmin(_ context.Context, email string, admin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsAdmin = admin
	return nil
}

type fixedStats struct{}

func (fixedStats) Record(context.Context, ports.RecordStatInput) (*ports.RecordStatResult, error) {
	return nil, domain.ErrInvalidInput
}

func (fixedStats) List(context.Context) ([]*domain.Stat, error) {
	return []*domain.Stat{{ID: "s1", PlayerID: "u1", Jumps: 3}}, nil
}

func (fixedStats) Recent(context.Context) (*domain.Stat, error) {
	return nil, domain.ErrStatNotFound
}

func (fixedStats) DailyJumps(context.Context) ([]domain.DailyJumps, error) {
	return nil, nil
}

func authenticatorFor(t *testing.T, clk *fakeClock, lc *lifecycle.Controller) *token.Authenticator {
	t.Helper()
	v, err := token.NewVerifier(routerSecret, token.WithClock(clk.Now))
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return token.NewAuthenticator(v, token.NewGuard(lc.Generation()))
}

func testDeps(t *testing.T, clk *fakeClock, lc *lifecycle.Controller) Deps {
	return Deps{
		Log:           zerolog.Nop(),
		Lifecycle:     lc,
		Authenticator: authenticatorFor(t, clk, lc),
		CORSOrigins:   []string{"http://localhost:5173"},
	}
}

type node struct {
	lc  *lifecycle.Controller
	srv *httptest.Server
}

func startAuthNode(t *testing.T, clk *fakeClock, users ports.AuthRepository) node {
	t.Helper()
	lc := lifecycle.New("auth", lifecycle.WithClock(clk.Now))
	d := testDeps(t, clk, lc)
	issuer, err := token.NewIssuer(routerSecret, token.WithClock(clk.Now))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	svc := service.NewAuthService(users, issuer, d.Authenticator.(*token.Authenticator), time.Hour, 0, zerolog.Nop())
	e, err := NewAuthRouter(d, handler.NewAuthHandler(svc))
	if err != nil {
		t.Fatalf("NewAuthRouter: %v", err)
	}
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return node{lc: lc, srv: srv}
}

func startStatsNode(t *testing.T, clk *fakeClock) node {
	t.Helper()
	lc := lifecycle.New("stats", lifecycle.WithClock(clk.Now))
	e, err := NewStatsRouter(testDeps(t, clk, lc), handler.NewStatsHandler(fixedStats{}))
	if err != nil {
		t.Fatalf("NewStatsRouter: %v", err)
	}
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return node{lc: lc, srv: srv}
}

func call(t *testing.T, method, url, bearer string, body any) (int, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func login(t *testing.T, authURL, email, password string) string {
	t.Helper()
	code, body := call(t, http.MethodPost, authURL+"/api/auth/login", "", map[string]any{"email": email, "password": password})
	if code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", code, body)
	}
	tok, _ := body["token"].(string)
	if tok == "" {
		t.Fatalf("login returned no token: %v", body)
	}
	return tok
}

func register(t *testing.T, authURL, email string) string {
	t.Helper()
	code, body := call(t, http.MethodPost, authURL+"/api/auth/register", "", map[string]any{
		"firstName": "Grace", "lastName": "Hopper", "email": email, "password": "cobol59",
	})
	if code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%v)", code, body)
	}
	return body["token"].(string)
}

func TestRouters_CredentialInvalidatedByRestart(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	users := newMemUsers()
	auth := startAuthNode(t, clk, users)
	stats := startStatsNode(t, clk)

	clk.Advance(2 * time.Second)
	tok := register(t, auth.srv.URL, "grace@example.com")

	if code, _ := call(t, http.MethodGet, stats.srv.URL+"/stats", tok, nil); code != http.StatusOK {
		t.Fatalf("fresh credential: expected 200, got %d", code)
	}

	// Restart the stats service only.
	clk.Advance(5 * time.Second)
	stats.srv.Close()
	stats = startStatsNode(t, clk)

	if code, _ := call(t, http.MethodGet, stats.srv.URL+"/stats", tok, nil); code != http.StatusUnauthorized {
		t.Fatalf("pre-restart credential: expected 401, got %d", code)
	}
	// The auth service did not restart and still honours it.
	if code, body := call(t, http.MethodGet, auth.srv.URL+"/api/auth/me", tok, nil); code != http.StatusOK {
		t.Fatalf("auth service: expected 200, got %d (%v)", code, body)
	}

	fresh := login(t, auth.srv.URL, "grace@example.com", "cobol59")
	if code, _ := call(t, http.MethodGet, stats.srv.URL+"/stats", fresh, nil); code != http.StatusOK {
		t.Fatalf("re-issued credential: expected 200, got %d", code)
	}
}

func TestRouters_PublicAllowList(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	auth := startAuthNode(t, clk, newMemUsers())
	stats := startStatsNode(t, clk)

	cases := []struct {
		name   string
		method string
		url    string
		want   int
	}{
		{"health is public", http.MethodGet, stats.srv.URL + "/health", http.StatusOK},
		{"stats need a credential", http.MethodGet, stats.srv.URL + "/stats", http.StatusUnauthorized},
		{"control needs a credential", http.MethodGet, stats.srv.URL + "/api/service/status", http.StatusUnauthorized},
		{"me needs a credential", http.MethodGet, auth.srv.URL + "/api/auth/me", http.StatusUnauthorized},
		{"check answers without one", http.MethodGet, auth.srv.URL + "/api/auth/check", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if code, _ := call(t, tc.method, tc.url, "", nil); code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, code)
			}
		})
	}

	code, body := call(t, http.MethodGet, auth.srv.URL+"/api/auth/check", "", nil)
	if code != http.StatusUnauthorized || body["valid"] != false {
		t.Fatalf("check without credential: got %d %v", code, body)
	}
}

func TestRouters_CORSPreflightSkipsAuth(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	stats := startStatsNode(t, clk)

	req, _ := http.NewRequest(http.MethodOptions, stats.srv.URL+"/stats", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}

func TestRouters_AdminControlSurface(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	users := newMemUsers()
	auth := startAuthNode(t, clk, users)
	stats := startStatsNode(t, clk)

	clk.Advance(time.Second)
	player := register(t, auth.srv.URL, "player@example.com")

	if code, _ := call(t, http.MethodPost, stats.srv.URL+"/api/service/stop", player, nil); code != http.StatusForbidden {
		t.Fatalf("non-admin stop: expected 403, got %d", code)
	}
	if !stats.lc.Running() {
		t.Fatalf("forbidden stop must not change state")
	}

	if err := users.SetAdmin(context.Background(), "player@example.com", true); err != nil {
		t.Fatalf("SetAdmin: %v", err)
	}
	// The grant is baked in at the next login.
	if code, _ := call(t, http.MethodPost, stats.srv.URL+"/api/service/stop", player, nil); code != http.StatusForbidden {
		t.Fatalf("old credential after grant: expected 403, got %d", code)
	}
	admin := login(t, auth.srv.URL, "player@example.com", "cobol59")

	code, body := call(t, http.MethodPost, stats.srv.URL+"/api/service/stop", admin, nil)
	if code != http.StatusOK || body["message"] != "service stopped" {
		t.Fatalf("admin stop: got %d %v", code, body)
	}
	if stats.lc.Running() {
		t.Fatalf("service still running after stop")
	}

	if code, _ := call(t, http.MethodGet, stats.srv.URL+"/stats", admin, nil); code != http.StatusServiceUnavailable {
		t.Fatalf("stopped service: expected 503, got %d", code)
	}
	code, body = call(t, http.MethodGet, stats.srv.URL+"/health", "", nil)
	if code != http.StatusOK || body["status"] != "stopped" {
		t.Fatalf("health while stopped: got %d %v", code, body)
	}

	if code, _ := call(t, http.MethodPost, stats.srv.URL+"/api/service/start", admin, nil); code != http.StatusOK {
		t.Fatalf("admin start: expected 200, got %d", code)
	}
	if code, _ := call(t, http.MethodGet, stats.srv.URL+"/stats", admin, nil); code != http.StatusOK {
		t.Fatalf("restarted service: expected 200, got %d", code)
	}
}

func TestRouters_MetricsEndpointExposesHTTPMetrics(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	// Two routers in one process each keep their own HTTP metrics registry.
	_ = startAuthNode(t, clk, newMemUsers())
	stats := startStatsNode(t, clk)

	if code, _ := call(t, http.MethodGet, stats.srv.URL+"/health", "", nil); code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", code)
	}

	resp, err := http.Get(stats.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "flappy_stats_requests_total") {
		t.Fatalf("expected HTTP request counter in metrics output")
	}
}

type memSkins struct {
	mu    sync.Mutex
	skins []*domain.Skin
}

func (r *memSkins) Create(_ context.Context, filename, _ string) (*domain.Skin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	skin := &domain.Skin{ID: int64(len(r.skins) + 1), Filename: filename}
	r.skins = append(r.skins, skin)
	return skin, nil
}

func (r *memSkins) Latest(context.Context) (*domain.Skin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.skins) == 0 {
		return nil, domain.ErrSkinNotFound
	}
	return r.skins[len(r.skins)-1], nil
}

func upload(t *testing.T, url, bearer, filename string, size int) int {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(bytes.Repeat([]byte("a"), size))
	w.Close()

	req, _ := http.NewRequest(http.MethodPost, url+"/images/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bearer)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestRouters_OversizeUploadIsRejected(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	auth := startAuthNode(t, clk, newMemUsers())

	lc := lifecycle.New("image", lifecycle.WithClock(clk.Now))
	dir, err := uploads.New(t.TempDir())
	if err != nil {
		t.Fatalf("uploads.New: %v", err)
	}
	skins := &memSkins{}
	svc := service.NewSkinService(skins, dir, zerolog.Nop())
	e, err := NewImageRouter(testDeps(t, clk, lc), handler.NewSkinHandler(svc, dir.Root()))
	if err != nil {
		t.Fatalf("NewImageRouter: %v", err)
	}
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	clk.Advance(time.Second)
	tok := register(t, auth.srv.URL, "artist@example.com")

	if code := upload(t, srv.URL, tok, "bird.png", uploads.MaxSize+1); code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversize upload: expected 413, got %d", code)
	}
	if len(skins.skins) != 0 {
		t.Fatalf("oversize upload must not create a skin row")
	}
	entries, _ := os.ReadDir(dir.Root())
	if len(entries) != 0 {
		t.Fatalf("oversize upload left %d files behind", len(entries))
	}

	if code := upload(t, srv.URL, tok, "bird.png", 1024); code != http.StatusCreated {
		t.Fatalf("small upload: expected 201, got %d", code)
	}
}
