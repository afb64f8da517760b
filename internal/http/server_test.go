package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"outlay/internal/auth"
	"outlay/internal/cache"
	"outlay/internal/services"
	"outlay/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	tokens, err := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("create token manager: %v", err)
	}

	expenses := services.NewExpenseService(repo, nil,
		cache.NewLRUCache[int64](64, time.Minute),
		cache.NewLRUCache[[]string](64, time.Minute))
	accounts := services.NewAccountService(repo, auth.NewHasher(4))

	srv := NewServer("127.0.0.1:0", expenses, accounts, tokens, auth.NewResolver(repo), repo)
	t.Cleanup(srv.loginLimiter.stop)
	return srv
}

func (s *Server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"firstName":   "Ada",
		"lastName":    "Lovelace",
		"email":       email,
		"password":    "correct horse",
		"dateOfBirth": "1990-12-10",
	}
}

func (s *Server) login(t *testing.T, email string) string {
	t.Helper()

	if rec := s.do(t, http.MethodPost, "/auth/register", "", registerBody(email)); rec.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": "correct horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" || resp.Email != email {
		t.Fatalf("login response = %+v", resp)
	}
	return resp.Token
}

func expenseBody(item, cost, date string) map[string]any {
	return map[string]any{
		"item":        item,
		"cost":        cost,
		"expenseDate": date,
		"category":    "Food",
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	if rec := srv.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	srv.login(t, "ada@example.com")

	wrongPassword := srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})
	unknownEmail := srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "correct horse",
	})

	if wrongPassword.Code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d, want 401", wrongPassword.Code)
	}
	if unknownEmail.Code != http.StatusUnauthorized {
		t.Errorf("unknown email = %d, want 401", unknownEmail.Code)
	}
	// Both failures answer identically.
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Error("login failures should be indistinguishable")
	}
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	srv := newTestServer(t)
	srv.login(t, "ada@example.com")

	rec := srv.do(t, http.MethodPost, "/auth/register", "", registerBody("ada@example.com"))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	if rec := srv.do(t, http.MethodGet, "/expenses", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/expenses", "not-a-jwt", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token = %d, want 401", rec.Code)
	}
}

func TestTokenForDeletedAccountIsRejected(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "ada@example.com")

	if rec := srv.do(t, http.MethodDelete, "/account", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete account = %d", rec.Code)
	}

	// The token is still cryptographically valid but its subject is gone.
	if rec := srv.do(t, http.MethodGet, "/expenses", token, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("orphaned token = %d, want 401", rec.Code)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "ada@example.com")

	created := srv.do(t, http.MethodPost, "/expenses", token, expenseBody("Coffee", "4.50", "2024-03-01"))
	if created.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", created.Code, created.Body.String())
	}

	var expense struct {
		ID   int64  `json:"id"`
		Item string `json:"item"`
		Cost string `json:"cost"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode created expense: %v", err)
	}
	if expense.Item != "Coffee" || expense.Cost != "4.50" {
		t.Errorf("created expense = %+v", expense)
	}

	path := fmt.Sprintf("/expenses/%d", expense.ID)

	if rec := srv.do(t, http.MethodGet, path, token, nil); rec.Code != http.StatusOK {
		t.Errorf("get = %d", rec.Code)
	}

	updated := srv.do(t, http.MethodPut, path, token, expenseBody("Espresso", "3.00", "2024-03-02"))
	if updated.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", updated.Code, updated.Body.String())
	}

	if rec := srv.do(t, http.MethodDelete, path, token, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, path, token, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.login(t, "alice@example.com")
	bob := srv.login(t, "bob@example.com")

	created := srv.do(t, http.MethodPost, "/expenses", alice, expenseBody("Coffee", "4.50", "2024-03-01"))
	if created.Code != http.StatusCreated {
		t.Fatalf("create = %d", created.Code)
	}
	var expense struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode: %v", err)
	}
	path := fmt.Sprintf("/expenses/%d", expense.ID)

	// Bob sees 404, not 403: he cannot learn the record exists.
	if rec := srv.do(t, http.MethodGet, path, bob, nil); rec.Code != http.StatusNotFound {
		t.Errorf("foreign get = %d, want 404", rec.Code)
	}
	if rec := srv.do(t, http.MethodPut, path, bob, expenseBody("Hijack", "0.01", "2024-03-02")); rec.Code != http.StatusNotFound {
		t.Errorf("foreign update = %d, want 404", rec.Code)
	}
	if rec := srv.do(t, http.MethodDelete, path, bob, nil); rec.Code != http.StatusNotFound {
		t.Errorf("foreign delete = %d, want 404", rec.Code)
	}

	// Alice's record is intact.
	if rec := srv.do(t, http.MethodGet, path, alice, nil); rec.Code != http.StatusOK {
		t.Errorf("owner get after foreign writes = %d, want 200", rec.Code)
	}

	var list []json.RawMessage
	rec := srv.do(t, http.MethodGet, "/expenses", bob, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode bob's list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob's list has %d entries, want 0", len(list))
	}
}

func TestExpenseValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "ada@example.com")

	if rec := srv.do(t, http.MethodPost, "/expenses", token, expenseBody("   ", "4.50", "2024-03-01")); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank item = %d, want 422", rec.Code)
	}

	rec := srv.do(t, http.MethodGet, "/expenses?from=2024-03-10&to=2024-03-01", token, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("inverted range = %d, want 422", rec.Code)
	}
}

func TestExpenseFilters(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "ada@example.com")

	for _, body := range []map[string]any{
		expenseBody("Morning coffee", "4.50", "2024-03-01"),
		expenseBody("Lunch", "12.00", "2024-03-05"),
		{"item": "Train ticket", "cost": "30.00", "expenseDate": "2024-04-01", "category": "Travel"},
	} {
		if rec := srv.do(t, http.MethodPost, "/expenses", token, body); rec.Code != http.StatusCreated {
			t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
		}
	}

	count := func(path string) int {
		rec := srv.do(t, http.MethodGet, path, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d: %s", path, rec.Code, rec.Body.String())
		}
		var list []json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		return len(list)
	}

	if got := count("/expenses"); got != 3 {
		t.Errorf("unfiltered list = %d, want 3", got)
	}
	if got := count("/expenses?category=Food"); got != 2 {
		t.Errorf("category filter = %d, want 2", got)
	}
	if got := count("/expenses?search=COFFEE"); got != 1 {
		t.Errorf("case-insensitive search = %d, want 1", got)
	}
	if got := count("/expenses?from=2024-03-01&to=2024-03-31"); got != 2 {
		t.Errorf("date range filter = %d, want 2", got)
	}
	if got := count("/expenses?minCost=10.00&maxCost=40.00"); got != 2 {
		t.Errorf("cost range filter = %d, want 2", got)
	}
}

func TestSummaries(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "ada@example.com")

	for _, body := range []map[string]any{
		expenseBody("Coffee", "4.50", "2024-02-29"),
		expenseBody("Lunch", "12.00", "2024-03-05"),
	} {
		if rec := srv.do(t, http.MethodPost, "/expenses", token, body); rec.Code != http.StatusCreated {
			t.Fatalf("create = %d", rec.Code)
		}
	}

	var total totalResponse
	rec := srv.do(t, http.MethodGet, "/summary/total", token, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &total); err != nil {
		t.Fatalf("decode total: %v", err)
	}
	if total.Total.Cents != 1650 {
		t.Errorf("total = %d cents, want 1650", total.Total.Cents)
	}

	var monthly monthlyTotalResponse
	rec = srv.do(t, http.MethodGet, "/summary/monthly?year=2024&month=2", token, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &monthly); err != nil {
		t.Fatalf("decode monthly: %v", err)
	}
	if monthly.Total.Cents != 450 {
		t.Errorf("february total = %d cents, want 450", monthly.Total.Cents)
	}

	var yearly yearlyTotalResponse
	rec = srv.do(t, http.MethodGet, "/summary/yearly?year=2024", token, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &yearly); err != nil {
		t.Fatalf("decode yearly: %v", err)
	}
	if yearly.Total.Cents != 1650 {
		t.Errorf("2024 total = %d cents, want 1650", yearly.Total.Cents)
	}

	var byCategory categoryTotalResponse
	rec = srv.do(t, http.MethodGet, "/summary/category?name=Food", token, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &byCategory); err != nil {
		t.Fatalf("decode category total: %v", err)
	}
	if byCategory.Total.Cents != 1650 {
		t.Errorf("Food total = %d cents, want 1650", byCategory.Total.Cents)
	}
}

func TestAuthRateLimit(t *testing.T) {
	srv := newTestServer(t)

	body := map[string]string{"email": "ada@example.com", "password": "wrong"}
	var last int
	for i := 0; i < rateLimitRequests+1; i++ {
		last = srv.do(t, http.MethodPost, "/auth/login", "", body).Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("request %d = %d, want 429", rateLimitRequests+1, last)
	}
}
