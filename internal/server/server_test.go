package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	clientrepo "github.com/smallbiznis/gstbill/internal/client/repository"
	clientservice "github.com/smallbiznis/gstbill/internal/client/service"
	"github.com/smallbiznis/gstbill/internal/clock"
	companyrepo "github.com/smallbiznis/gstbill/internal/companyprofile/repository"
	companyservice "github.com/smallbiznis/gstbill/internal/companyprofile/service"
	"github.com/smallbiznis/gstbill/internal/config"
	dashboardservice "github.com/smallbiznis/gstbill/internal/dashboard/service"
	"github.com/smallbiznis/gstbill/internal/invoice/render"
	invoicerepo "github.com/smallbiznis/gstbill/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/gstbill/internal/invoice/service"
	ledgerrepo "github.com/smallbiznis/gstbill/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/gstbill/internal/ledger/service"
	"github.com/smallbiznis/gstbill/internal/migration"
	"github.com/smallbiznis/gstbill/internal/observability"
	obsmetrics "github.com/smallbiznis/gstbill/internal/observability/metrics"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	paymentrepo "github.com/smallbiznis/gstbill/internal/payment/repository"
	paymentservice "github.com/smallbiznis/gstbill/internal/payment/service"
	"github.com/smallbiznis/gstbill/internal/ratelimit"
	taxraterepo "github.com/smallbiznis/gstbill/internal/taxrate/repository"
	taxrateservice "github.com/smallbiznis/gstbill/internal/taxrate/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

const testOrgID = "1001"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error errorPayload    `json:"error"`
}

func newTestServer(t *testing.T, limiter *ratelimit.PublicBillLimiter) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:server_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.EnsureSchema(db))

	node, err := snowflake.NewNode(9)
	require.NoError(t, err)
	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))

	clients := clientservice.New(clientservice.Params{DB: db, Log: log, GenID: node, Clock: fake, Repo: clientrepo.Provide()})
	profiles := companyservice.New(companyservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Defaults: config.DefaultCompanyDefaults(),
		Repo:     companyrepo.Provide(),
	})
	rates := taxrateservice.NewService(taxrateservice.ServiceParams{Log: log, GenID: node, Clock: fake, Repo: taxraterepo.NewRepository(db)})
	renderer, err := render.NewRenderer()
	require.NoError(t, err)
	invoices := invoiceservice.NewService(invoiceservice.ServiceParam{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      fake,
		Repo:       invoicerepo.Provide(),
		Renderer:   renderer,
		ClientSvc:  clients,
		CompanySvc: profiles,
		TaxRateSvc: rates,
	})
	payments := paymentservice.NewService(paymentservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       fake,
		Repo:        paymentrepo.Provide(),
		InvoiceRepo: invoicerepo.Provide(),
	})
	ledgers := ledgerservice.NewService(ledgerservice.Params{DB: db, Log: log, Repo: ledgerrepo.Provide(), ClientSvc: clients})
	dashboards := dashboardservice.NewService(dashboardservice.Params{DB: db, Log: log, CompanySvc: profiles})

	httpMetrics, err := obsmetrics.NewHTTPMetricsWith(prometheus.NewRegistry())
	require.NoError(t, err)

	return NewServer(ServerParams{
		Gin:               NewEngine(observability.Config{}, httpMetrics),
		Log:               log,
		ClientSvc:         clients,
		CompanyProfileSvc: profiles,
		TaxRateSvc:        rates,
		InvoiceSvc:        invoices,
		PaymentSvc:        payments,
		LedgerSvc:         ledgers,
		DashboardSvc:      dashboards,
		PublicBillLimiter: limiter,
	})
}

func doRequest(t *testing.T, s *Server, method, path string, body any, withOrg bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if withOrg {
		req.Header.Set(orgcontext.HeaderOrgID, testOrgID)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env.Error
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w := doRequest(t, s, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCalculateThreeLineExample(t *testing.T) {
	s := newTestServer(t, nil)
	w := doRequest(t, s, http.MethodPost, "/api/calculate", gin.H{
		"lines": []gin.H{
			{"quantity": "2", "unit_price": "100", "tax_rate": "18"},
			{"quantity": "1", "unit_price": "50", "tax_rate": "5"},
			{"quantity": "3", "unit_price": "33.33", "tax_rate": "12"},
		},
		"seller_state": "Tamil Nadu",
		"buyer_state":  " tamil nadu ",
	}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Subtotal     decimal.Decimal `json:"subtotal"`
		TaxTotal     decimal.Decimal `json:"tax_total"`
		TotalAmount  decimal.Decimal `json:"total_amount"`
		RoundedTotal decimal.Decimal `json:"rounded_total"`
		RoundOff     decimal.Decimal `json:"round_off"`
		Lines        []struct {
			Amount decimal.Decimal `json:"amount"`
			Tax    decimal.Decimal `json:"tax"`
		} `json:"lines"`
		Split struct {
			Mode string          `json:"mode"`
			CGST decimal.Decimal `json:"cgst"`
			SGST decimal.Decimal `json:"sgst"`
			IGST decimal.Decimal `json:"igst"`
		} `json:"tax_split"`
		Words string `json:"amount_in_words"`
	}
	decodeData(t, w, &resp)

	assertDecimal(t, "349.99", resp.Subtotal)
	assertDecimal(t, "50.4988", resp.TaxTotal)
	assertDecimal(t, "400.4888", resp.TotalAmount)
	assertDecimal(t, "400", resp.RoundedTotal)
	assertDecimal(t, "-0.4888", resp.RoundOff)
	require.Len(t, resp.Lines, 3)
	assertDecimal(t, "99.99", resp.Lines[2].Amount)
	assertDecimal(t, "11.9988", resp.Lines[2].Tax)
	assert.Equal(t, "CGST_SGST", resp.Split.Mode)
	assertDecimal(t, "25.2494", resp.Split.CGST)
	assertDecimal(t, "25.2494", resp.Split.SGST)
	assertDecimal(t, "0", resp.Split.IGST)
	assert.Equal(t, "Rupees Four Hundred Only", resp.Words)
}

func TestCalculateWithoutLinesAndUnknownState(t *testing.T) {
	s := newTestServer(t, nil)
	w := doRequest(t, s, http.MethodPost, "/api/calculate", gin.H{"seller_state": "Kerala"}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		RoundedTotal decimal.Decimal `json:"rounded_total"`
		Split        struct {
			Mode string `json:"mode"`
		} `json:"tax_split"`
		Words string `json:"amount_in_words"`
	}
	decodeData(t, w, &resp)
	assert.True(t, resp.RoundedTotal.IsZero())
	assert.Equal(t, "UNKNOWN", resp.Split.Mode)
	assert.Equal(t, "Zero Rupees Only", resp.Words)
}

func TestCalculateValidation(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodPost, "/api/calculate", gin.H{
		"lines": []gin.H{{"quantity": "1", "unit_price": "10"}, {"quantity": "abc", "unit_price": "10"}},
	}, false)
	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeError(t, w)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "lines[1].quantity", payload.Errors[0].Field)
	assert.Equal(t, "invalid_number", payload.Errors[0].Code)

	w = doRequest(t, s, http.MethodPost, "/api/calculate", gin.H{
		"lines": []gin.H{{"quantity": "-1", "unit_price": "10", "tax_rate": "5"}},
	}, false)
	require.Equal(t, http.StatusBadRequest, w.Code)
	payload = decodeError(t, w)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "quantity", payload.Errors[0].Field)

	w = doRequest(t, s, http.MethodPost, "/api/calculate", gin.H{
		"lines": []gin.H{{"quantity": "1", "unit_price": "10", "tax_rate": "101"}},
	}, false)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_tax_rate", decodeError(t, w).Errors[0].Code)
}

func TestAPIRequiresOrganization(t *testing.T) {
	s := newTestServer(t, nil)
	w := doRequest(t, s, http.MethodGet, "/api/clients", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMalformedPageTokenIsRejected(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/api/clients?page_token=garbage", "/api/invoices?page_token=garbage"} {
		w := doRequest(t, s, http.MethodGet, path, nil, true)
		require.Equal(t, http.StatusBadRequest, w.Code, path)
		payload := decodeError(t, w)
		require.Len(t, payload.Errors, 1)
		assert.Equal(t, "invalid_page_token", payload.Errors[0].Code)
		assert.Equal(t, "page_token", payload.Errors[0].Field)
	}
}

func TestInvoiceLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodPost, "/api/clients", gin.H{"name": "Acme Traders", "state": "Karnataka"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var client struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &client)

	w = doRequest(t, s, http.MethodPost, "/api/tax-rates", gin.H{"name": "GST 18", "rate": "18"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rate struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &rate)

	w = doRequest(t, s, http.MethodPost, "/api/invoices", gin.H{
		"client_id": client.ID,
		"lines": []gin.H{
			{"description": "Consulting", "quantity": "1", "unit_price": "100", "tax_rate_id": rate.ID},
		},
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var invoice struct {
		ID           string          `json:"id"`
		Number       string          `json:"invoice_number"`
		PublicUUID   string          `json:"public_uuid"`
		Status       string          `json:"status"`
		RoundedTotal decimal.Decimal `json:"rounded_total"`
	}
	decodeData(t, w, &invoice)
	assert.Equal(t, "INV-20260301-0001", invoice.Number)
	assert.Equal(t, "DRAFT", invoice.Status)
	assertDecimal(t, "118", invoice.RoundedTotal)

	w = doRequest(t, s, http.MethodGet, "/api/invoices/"+invoice.ID+"/document", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var doc struct {
		Split struct {
			Mode string          `json:"mode"`
			IGST decimal.Decimal `json:"igst"`
		} `json:"tax_split"`
		Words string `json:"amount_in_words"`
	}
	decodeData(t, w, &doc)
	assert.Equal(t, "IGST", doc.Split.Mode)
	assertDecimal(t, "18", doc.Split.IGST)
	assert.Equal(t, "Rupees One Hundred and Eighteen Only", doc.Words)

	w = doRequest(t, s, http.MethodGet, "/api/invoices/"+invoice.ID+"/render", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), "INV-20260301-0001")

	w = doRequest(t, s, http.MethodPost, "/api/invoices/"+invoice.ID+"/payments", gin.H{"amount": "18", "method": "upi", "paid_at": "2026-03-02"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid struct {
		InvoiceStatus string          `json:"invoice_status"`
		BalanceDue    decimal.Decimal `json:"balance_due"`
	}
	decodeData(t, w, &paid)
	assert.Equal(t, "PARTIALLY_PAID", paid.InvoiceStatus)
	assertDecimal(t, "100", paid.BalanceDue)

	w = doRequest(t, s, http.MethodGet, "/api/invoices/"+invoice.ID+"/payments", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]any
	decodeData(t, w, &items)
	assert.Len(t, items, 1)

	w = doRequest(t, s, http.MethodPost, "/api/invoices/"+invoice.ID+"/send", nil, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, s, http.MethodGet, "/api/clients/"+client.ID+"/ledger", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ledger struct {
		Rows          []map[string]any `json:"rows"`
		TotalInvoiced decimal.Decimal  `json:"total_invoiced"`
		TotalPaid     decimal.Decimal  `json:"total_paid"`
		BalanceDue    decimal.Decimal  `json:"balance_due"`
	}
	decodeData(t, w, &ledger)
	assert.Len(t, ledger.Rows, 3)
	assertDecimal(t, "118", ledger.TotalInvoiced)
	assertDecimal(t, "18", ledger.TotalPaid)
	assertDecimal(t, "100", ledger.BalanceDue)

	w = doRequest(t, s, http.MethodGet, "/api/dashboard/summary", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary struct {
		InvoiceCount int64           `json:"invoice_count"`
		ClientCount  int64           `json:"client_count"`
		Receivable   decimal.Decimal `json:"receivable"`
		Received     decimal.Decimal `json:"received"`
		Pending      decimal.Decimal `json:"pending"`
	}
	decodeData(t, w, &summary)
	assert.Equal(t, int64(1), summary.InvoiceCount)
	assert.Equal(t, int64(1), summary.ClientCount)
	assertDecimal(t, "118", summary.Receivable)
	assertDecimal(t, "18", summary.Received)
	assertDecimal(t, "100", summary.Pending)

	w = doRequest(t, s, http.MethodGet, "/api/dashboard/summary", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, s, http.MethodGet, "/bill/"+invoice.PublicUUID, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rupees One Hundred and Eighteen Only")

	w = doRequest(t, s, http.MethodDelete, "/api/clients/"+client.ID, nil, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, s, http.MethodDelete, "/api/invoices/"+invoice.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, s, http.MethodGet, "/api/invoices/"+invoice.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, s, http.MethodDelete, "/api/clients/"+client.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateInvoiceErrors(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodPost, "/api/invoices", gin.H{"client_id": "12345", "lines": []gin.H{{"description": "x", "quantity": "1", "unit_price": "1"}}}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, s, http.MethodPost, "/api/invoices", `not an object`, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decodeError(t, w).Errors[0].Code)

	w = doRequest(t, s, http.MethodGet, "/bill/not-a-uuid", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicBillFailsOpenWhenLimiterBackendIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.Config{RateLimit: config.RateLimitConfig{PublicBillRate: 1, PublicBillBurst: 1}}
	limiter, err := ratelimit.NewPublicBillLimiter(cfg, ratelimit.NewTokenBucket(client))
	require.NoError(t, err)
	require.True(t, limiter.Enabled())

	s := newTestServer(t, limiter)
	w := doRequest(t, s, http.MethodGet, "/bill/not-a-uuid", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDenyRateLimitSetsRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.GET("/bill/:public_uuid", func(c *gin.Context) {
		denyRateLimit(c, normalizeRateLimitEndpoint(c), rateLimitReasonClientIP, 3, nil)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bill/abc", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("Retry-After"))
	assert.Equal(t, rateLimitReasonClientIP, w.Header().Get("X-Rate-Limited-Reason"))
}
