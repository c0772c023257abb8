package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/subwave-io/subwave/adapters/clock"
	"github.com/subwave-io/subwave/adapters/hasher"
	"github.com/subwave-io/subwave/adapters/idgen"
	"github.com/subwave-io/subwave/adapters/memory"
	"github.com/subwave-io/subwave/adapters/metrics"
	"github.com/subwave-io/subwave/app"
	"github.com/subwave-io/subwave/web"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()

	plans := memory.NewPlanStore()
	accounts := memory.NewAccountStore()
	ledger := memory.NewLedgerStore()
	subs := memory.NewSubscriptionStore(accounts, ledger)
	clk := clock.NewFake(baseTime)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	logger := zerolog.Nop()

	h := web.NewHandler(web.Deps{
		Catalog:   app.NewCatalogService(plans, clk, logger),
		Lifecycle: app.NewLifecycleService(plans, accounts, subs, clk, m, logger),
		Meter:     app.NewMeterService(accounts, 0, m, logger),
		Revenue:   app.NewRevenueService(plans, ledger, logger),
		Accounts:  app.NewAccountService(accounts, hasher.Fake{}, clk, idgen.NewSequential("acct-"), logger),
		Metrics:   m,
		Logger:    logger,
	})
	return h.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body: %s", rec.Code, want, rec.Body.String())
	}
}

// seedPlan adds a plan through the API so the catalog path is exercised.
func seedPlan(t *testing.T, router http.Handler, name, price, cap string) {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/plans",
		`{"name":"`+name+`","speed":"200 Mbps","price_monthly":"`+price+`","cap":"`+cap+`"}`)
	mustStatus(t, rec, http.StatusCreated)
}

func seedAccount(t *testing.T, router http.Handler, id string) {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/accounts",
		`{"id":"`+id+`","display_name":"Test User","password":"hunter2"}`)
	mustStatus(t, rec, http.StatusCreated)
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, "GET", "/healthz", "")
	mustStatus(t, rec, http.StatusOK)

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestAddAndListPlans(t *testing.T) {
	router := setupTestRouter(t)
	seedPlan(t, router, "Basic", "29.99", "500 GB")
	seedPlan(t, router, "Premium", "79.99", "Unlimited")

	rec := doJSON(t, router, "GET", "/api/plans", "")
	mustStatus(t, rec, http.StatusOK)

	var plans []map[string]any
	decodeBody(t, rec, &plans)
	if len(plans) != 2 {
		t.Fatalf("len(plans) = %d, want 2", len(plans))
	}
	if plans[0]["name"] != "Basic" || plans[1]["name"] != "Premium" {
		t.Errorf("plans out of order: %v", plans)
	}
	if plans[0]["price_monthly"] != "29.99" {
		t.Errorf("price_monthly = %v, want 29.99", plans[0]["price_monthly"])
	}
	if plans[1]["cap"] != "Unlimited" {
		t.Errorf("cap = %v, want Unlimited", plans[1]["cap"])
	}
}

func TestAddPlan_Invalid(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/plans",
		`{"name":"Basic","speed":"50 Mbps","price_monthly":"free","cap":"500 GB"}`)
	mustStatus(t, rec, http.StatusBadRequest)

	var body map[string]map[string]string
	decodeBody(t, rec, &body)
	if body["error"]["code"] != "validation_failed" {
		t.Errorf("code = %q, want validation_failed", body["error"]["code"])
	}
}

func TestAddPlan_MalformedJSON(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/plans", `{"name":`)
	mustStatus(t, rec, http.StatusBadRequest)

	var body map[string]map[string]string
	decodeBody(t, rec, &body)
	if body["error"]["code"] != "malformed_json" {
		t.Errorf("code = %q, want malformed_json", body["error"]["code"])
	}
}

func TestRemovePlan(t *testing.T) {
	router := setupTestRouter(t)
	seedPlan(t, router, "Basic", "29.99", "500 GB")
	seedPlan(t, router, "Premium", "79.99", "Unlimited")

	rec := doJSON(t, router, "DELETE", "/api/plans/0", "")
	mustStatus(t, rec, http.StatusNoContent)

	rec = doJSON(t, router, "GET", "/api/plans", "")
	var plans []map[string]any
	decodeBody(t, rec, &plans)
	if len(plans) != 1 || plans[0]["name"] != "Premium" {
		t.Errorf("plans after remove = %v, want [Premium]", plans)
	}
}

func TestRemovePlan_BadIndex(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, "DELETE", "/api/plans/nope", "")
	mustStatus(t, rec, http.StatusNotFound)

	rec = doJSON(t, router, "DELETE", "/api/plans/7", "")
	mustStatus(t, rec, http.StatusNotFound)
}

func TestSignupAndGetAccount(t *testing.T) {
	router := setupTestRouter(t)
	seedAccount(t, router, "alice")

	rec := doJSON(t, router, "GET", "/api/accounts/alice", "")
	mustStatus(t, rec, http.StatusOK)

	var body map[string]any
	decodeBody(t, rec, &body)
	if body["id"] != "alice" || body["display_name"] != "Test User" {
		t.Errorf("account = %v", body)
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("password hash exposed in response")
	}
}

func TestSignup_Duplicate(t *testing.T) {
	router := setupTestRouter(t)
	seedAccount(t, router, "alice")

	rec := doJSON(t, router, "POST", "/api/accounts",
		`{"id":"alice","display_name":"Again","password":"x"}`)
	mustStatus(t, rec, http.StatusConflict)
}

func TestGetAccount_NotFound(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, "GET", "/api/accounts/ghost", "")
	mustStatus(t, rec, http.StatusNotFound)

	var body map[string]map[string]string
	decodeBody(t, rec, &body)
	if body["error"]["code"] != "not_found" {
		t.Errorf("code = %q, want not_found", body["error"]["code"])
	}
}

func TestListAccounts_Pagination(t *testing.T) {
	router := setupTestRouter(t)
	for _, id := range []string{"carol", "alice", "bob"} {
		seedAccount(t, router, id)
	}

	rec := doJSON(t, router, "GET", "/api/accounts?limit=2&offset=1", "")
	mustStatus(t, rec, http.StatusOK)

	var accounts []map[string]any
	decodeBody(t, rec, &accounts)
	if len(accounts) != 2 {
		t.Fatalf("len = %d, want 2", len(accounts))
	}
	if accounts[0]["id"] != "bob" || accounts[1]["id"] != "carol" {
		t.Errorf("page = %v, want [bob carol]", accounts)
	}
}

func TestUpdateContact(t *testing.T) {
	router := setupTestRouter(t)
	seedAccount(t, router, "alice")

	rec := doJSON(t, router, "PUT", "/api/accounts/alice/contact",
		`{"display_name":"Alice B","email":"alice@example.com","phone":"555-0100","address":"1 Main St"}`)
	mustStatus(t, rec, http.StatusOK)

	var body map[string]any
	decodeBody(t, rec, &body)
	contact, _ := body["contact"].(map[string]any)
	if body["display_name"] != "Alice B" || contact["email"] != "alice@example.com" {
		t.Errorf("contact not updated: %v", body)
	}
}

func TestSubscribeLifecycle(t *testing.T) {
	router := setupTestRouter(t)
	seedPlan(t, router, "Basic", "29.99", "500 GB")
	seedPlan(t, router, "Premium", "79.99", "Unlimited")
	seedAccount(t, router, "alice")

	// Subscribe.
	rec := doJSON(t, router, "POST", "/api/accounts/alice/subscriptions", `{"plan":"Basic"}`)
	mustStatus(t, rec, http.StatusCreated)

	var created map[string]any
	decodeBody(t, rec, &created)
	if created["plan"] != "Basic" || created["status"] != "active" {
		t.Fatalf("record = %v", created)
	}
	start, _ := time.Parse(time.RFC3339, created["start_date"].(string))
	end, _ := time.Parse(time.RFC3339, created["end_date"].(string))
	if got := end.Sub(start); got != 365*24*time.Hour {
		t.Errorf("term = %v, want 365 days", got)
	}

	// Renew by two months.
	rec = doJSON(t, router, "POST", "/api/accounts/alice/subscriptions/0/renew", `{"months":2}`)
	mustStatus(t, rec, http.StatusOK)

	var renewed map[string]any
	decodeBody(t, rec, &renewed)
	newEnd, _ := time.Parse(time.RFC3339, renewed["end_date"].(string))
	if got := newEnd.Sub(end); got != 60*24*time.Hour {
		t.Errorf("renewal extension = %v, want 60 days", got)
	}

	// Upgrade keeps the dates.
	rec = doJSON(t, router, "POST", "/api/accounts/alice/subscriptions/0/upgrade", `{"plan":"Premium"}`)
	mustStatus(t, rec, http.StatusOK)

	var upgraded map[string]any
	decodeBody(t, rec, &upgraded)
	if upgraded["plan"] != "Premium" || upgraded["cap"] != "Unlimited" {
		t.Errorf("upgraded = %v", upgraded)
	}
	if upgraded["end_date"] != renewed["end_date"] {
		t.Errorf("upgrade changed end date: %v != %v", upgraded["end_date"], renewed["end_date"])
	}

	// Cancel.
	rec = doJSON(t, router, "POST", "/api/accounts/alice/subscriptions/0/cancel", "")
	mustStatus(t, rec, http.StatusOK)

	var cancelled map[string]any
	decodeBody(t, rec, &cancelled)
	if cancelled["status"] != "cancelled" {
		t.Errorf("status = %v, want cancelled", cancelled["status"])
	}
}

func TestSubscribe_UnknownPlan(t *testing.T) {
	router := setupTestRouter(t)
	seedAccount(t, router, "alice")

	rec := doJSON(t, router, "POST", "/api/accounts/alice/subscriptions", `{"plan":"Mega"}`)
	mustStatus(t, rec, http.StatusNotFound)
}

func TestSubscribe_SecondRecordGetsNextIndex(t *testing.T) {
	router := setupTestRouter(t)
	seedPlan(t, router, "Basic", "29.99", "500 GB")
	seedPlan(t, router, "Premium", "79.99", "Unlimited")
	seedAccount(t, router, "alice")

	rec := doJSON(t, router, "POST", "/api/accounts/alice/subscriptions", `{"plan":"Basic"}`)
	mustStatus(t, rec, http.StatusCreated)
	var first map[string]any
	decodeBody(t, rec, &first)
	if first["index"] != float64(0) {
		t.Errorf("index = %v (plan %v), want 0", first["index"], first["plan"])
	}

	rec = doJSON(t, router, "POST", "/api/accounts/alice/subscriptions", `{"plan":"Premium"}`)
	mustStatus(t, rec, http.StatusCreated)
	var second map[string]any
	decodeBody(t, rec, &second)
	if second["index"] != float64(1) {
		t.Errorf("index = %v (plan %v), want 1", second["index"], second["plan"])
	}

	// The returned index addresses the record it created.
	rec = doJSON(t, router, "POST", "/api/accounts/alice/subscriptions/1/cancel", "")
	mustStatus(t, rec, http.StatusOK)
	var cancelled map[string]any
	decodeBody(t, rec, &cancelled)
	if cancelled["plan"] != "Premium" || cancelled["status"] != "cancelled" {
		t.Errorf("cancelled = %v, want Premium cancelled", cancelled)
	}
}

func TestRenew_InvalidTerm(t *testing.T) {
	router := setupTestRouter(t)
	seedPlan(t, router, "Basic", "29.99", "500 GB")
	seedAccount(t, router, "alice")
	doJSON(t, router, "POST", "/api/accounts/alice/subscriptions", `{"plan":"Basic"}`)

	rec := doJSON(t, router, "POST", "/api/accounts/alice/subscriptions/0/renew", `{"months":25}`)
	mustStatus(t, rec, http.StatusUnprocessableEntity)

	var body map[string]map[string]string
	decodeBody(t, rec, &body)
	if body["error"]["code"] != "invalid_state" {
		t.Errorf("code = %q, want invalid_state", body["error"]["code"])
	}
}

func TestRenew_Cancelled(t *testing.T) {
	router := setupTestRouter(t)
	seedPlan(t, router, "Basic", "29.99", "500 GB")
	seedAccount(t, router, "alice")
	doJSON(t, router, "POST", "/api/accounts/alice/subscriptions", `{"plan":"Basic"}`)
	doJSON(t, router, "POST", "/api/accounts/alice/subscriptions/0/cancel", "")

	rec := doJSON(t, router, "POST", "/api/accounts/alice/subscriptions/0/renew", `{"months":1}`)
	mustStatus(t, rec, http.StatusUnprocessableEntity)
}

func TestUsageFlow(t *testing.T) {
	router := setupTestRouter(t)
	seedPlan(t, router, "Basic", "29.99", "500 GB")
	seedAccount(t, router, "alice")
	doJSON(t, router, "POST", "/api/accounts/alice/subscriptions", `{"plan":"Basic"}`)

	for _, gb := range []string{"10", "20", "30"} {
		rec := doJSON(t, router, "POST", "/api/accounts/alice/usage", `{"gb":`+gb+`}`)
		mustStatus(t, rec, http.StatusNoContent)
	}

	rec := doJSON(t, router, "GET", "/api/accounts/alice/usage/summary", "")
	mustStatus(t, rec, http.StatusOK)

	var summary map[string]float64
	decodeBody(t, rec, &summary)
	if summary["total_gb"] != 60 || summary["max_gb"] != 30 || summary["average_gb"] != 20 {
		t.Errorf("summary = %v", summary)
	}

	// Accrue against the record and classify.
	rec = doJSON(t, router, "POST", "/api/accounts/alice/subscriptions/0/usage", `{"gb":450}`)
	mustStatus(t, rec, http.StatusNoContent)

	rec = doJSON(t, router, "GET", "/api/accounts/alice/subscriptions/0/classification", "")
	mustStatus(t, rec, http.StatusOK)

	var class map[string]any
	decodeBody(t, rec, &class)
	if class["tier"] != "warning" {
		t.Errorf("tier = %v, want warning", class["tier"])
	}
	if class["used_percent"].(float64) != 90 {
		t.Errorf("used_percent = %v, want 90", class["used_percent"])
	}
}

func TestRecordUsage_Negative(t *testing.T) {
	router := setupTestRouter(t)
	seedAccount(t, router, "alice")

	rec := doJSON(t, router, "POST", "/api/accounts/alice/usage", `{"gb":-1}`)
	mustStatus(t, rec, http.StatusBadRequest)
}

func TestUsageSummary_EmptyWindow(t *testing.T) {
	router := setupTestRouter(t)
	seedAccount(t, router, "alice")

	rec := doJSON(t, router, "GET", "/api/accounts/alice/usage/summary", "")
	mustStatus(t, rec, http.StatusNotFound)
}

func TestRevenueReport(t *testing.T) {
	router := setupTestRouter(t)
	seedPlan(t, router, "Basic", "29.99", "500 GB")
	seedPlan(t, router, "Standard", "49.99", "1 TB")
	seedAccount(t, router, "alice")
	seedAccount(t, router, "bob")
	doJSON(t, router, "POST", "/api/accounts/alice/subscriptions", `{"plan":"Basic"}`)
	doJSON(t, router, "POST", "/api/accounts/bob/subscriptions", `{"plan":"Basic"}`)
	doJSON(t, router, "POST", "/api/accounts/bob/subscriptions", `{"plan":"Standard"}`)

	rec := doJSON(t, router, "GET", "/api/revenue", "")
	mustStatus(t, rec, http.StatusOK)

	var body struct {
		ByPlan []struct {
			Plan    string `json:"plan"`
			Active  int    `json:"active"`
			Revenue string `json:"revenue"`
		} `json:"by_plan"`
		Total    string         `json:"total"`
		Statuses map[string]int `json:"statuses"`
	}
	decodeBody(t, rec, &body)

	if len(body.ByPlan) != 2 {
		t.Fatalf("len(by_plan) = %d, want 2", len(body.ByPlan))
	}
	if body.ByPlan[0].Plan != "Basic" || body.ByPlan[0].Active != 2 || body.ByPlan[0].Revenue != "59.98" {
		t.Errorf("Basic row = %+v", body.ByPlan[0])
	}
	if body.Total != "109.97" {
		t.Errorf("total = %s, want 109.97", body.Total)
	}
	if body.Statuses["active"] != 3 {
		t.Errorf("active count = %d, want 3", body.Statuses["active"])
	}
}

// A catalog re-price changes the current report but not the historical one.
func TestHistoricalRevenue(t *testing.T) {
	router := setupTestRouter(t)
	seedPlan(t, router, "Basic", "29.99", "500 GB")
	seedAccount(t, router, "alice")
	doJSON(t, router, "POST", "/api/accounts/alice/subscriptions", `{"plan":"Basic"}`)

	doJSON(t, router, "DELETE", "/api/plans/0", "")
	seedPlan(t, router, "Basic", "39.99", "500 GB")

	rec := doJSON(t, router, "GET", "/api/revenue", "")
	var current struct {
		Total string `json:"total"`
	}
	decodeBody(t, rec, &current)
	if current.Total != "39.99" {
		t.Errorf("current total = %s, want 39.99", current.Total)
	}

	rec = doJSON(t, router, "GET", "/api/revenue/historical", "")
	mustStatus(t, rec, http.StatusOK)

	var historical struct {
		ByPlan map[string]string `json:"by_plan"`
		Total  string            `json:"total"`
	}
	decodeBody(t, rec, &historical)
	if historical.Total != "29.99" {
		t.Errorf("historical total = %s, want 29.99", historical.Total)
	}
	if historical.ByPlan["Basic"] != "29.99" {
		t.Errorf("historical Basic = %s, want 29.99", historical.ByPlan["Basic"])
	}
}

func TestSweep(t *testing.T) {
	router := setupTestRouter(t)
	seedPlan(t, router, "Basic", "29.99", "500 GB")
	seedAccount(t, router, "alice")

	// Start far enough back that the 365-day term has lapsed.
	past := baseTime.AddDate(-2, 0, 0).Format(time.RFC3339)
	rec := doJSON(t, router, "POST", "/api/accounts/alice/subscriptions",
		`{"plan":"Basic","start":"`+past+`"}`)
	mustStatus(t, rec, http.StatusCreated)

	rec = doJSON(t, router, "POST", "/api/sweep", "")
	mustStatus(t, rec, http.StatusOK)

	var body map[string]int
	decodeBody(t, rec, &body)
	if body["expired"] != 1 {
		t.Errorf("expired = %d, want 1", body["expired"])
	}

	rec = doJSON(t, router, "GET", "/api/accounts/alice", "")
	var acct map[string]any
	decodeBody(t, rec, &acct)
	subs := acct["subscriptions"].([]any)
	if status := subs[0].(map[string]any)["status"]; status != "expired" {
		t.Errorf("status = %v, want expired", status)
	}
}

func TestRequestBody_Buffered(t *testing.T) {
	// Large bodies still decode through the middleware stack.
	router := setupTestRouter(t)

	var buf bytes.Buffer
	buf.WriteString(`{"name":"Big","speed":"1 Gbps","price_monthly":"99.99","cap":"Unlimited","description":"`)
	buf.WriteString(strings.Repeat("x", 4096))
	buf.WriteString(`"}`)

	rec := doJSON(t, router, "POST", "/api/plans", buf.String())
	mustStatus(t, rec, http.StatusCreated)
}
