package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/gstbill/internal/client"
	clientdomain "github.com/smallbiznis/gstbill/internal/client/domain"
	"github.com/smallbiznis/gstbill/internal/companyprofile"
	companydomain "github.com/smallbiznis/gstbill/internal/companyprofile/domain"
	"github.com/smallbiznis/gstbill/internal/config"
	"github.com/smallbiznis/gstbill/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/gstbill/internal/dashboard/domain"
	"github.com/smallbiznis/gstbill/internal/invoice"
	invoicedomain "github.com/smallbiznis/gstbill/internal/invoice/domain"
	"github.com/smallbiznis/gstbill/internal/ledger"
	ledgerdomain "github.com/smallbiznis/gstbill/internal/ledger/domain"
	"github.com/smallbiznis/gstbill/internal/observability"
	obslogger "github.com/smallbiznis/gstbill/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/gstbill/internal/observability/metrics"
	obstracing "github.com/smallbiznis/gstbill/internal/observability/tracing"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	"github.com/smallbiznis/gstbill/internal/payment"
	paymentdomain "github.com/smallbiznis/gstbill/internal/payment/domain"
	"github.com/smallbiznis/gstbill/internal/ratelimit"
	"github.com/smallbiznis/gstbill/internal/taxrate"
	taxratedomain "github.com/smallbiznis/gstbill/internal/taxrate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	client.Module,
	companyprofile.Module,
	taxrate.Module,
	invoice.Module,
	payment.Module,
	ledger.Module,
	dashboard.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine            *gin.Engine
	cfg               config.Config
	clientSvc         clientdomain.Service
	companyProfileSvc companydomain.Service
	taxRateSvc        taxratedomain.Service
	invoiceSvc        invoicedomain.Service
	paymentSvc        paymentdomain.Service
	ledgerSvc         ledgerdomain.Service
	dashboardSvc      dashboarddomain.Service
	publicBillLimiter *ratelimit.PublicBillLimiter
	obsMetrics        *obsmetrics.Metrics
	log               *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin               *gin.Engine
	Cfg               config.Config
	Log               *zap.Logger
	ClientSvc         clientdomain.Service
	CompanyProfileSvc companydomain.Service
	TaxRateSvc        taxratedomain.Service
	InvoiceSvc        invoicedomain.Service
	PaymentSvc        paymentdomain.Service
	LedgerSvc         ledgerdomain.Service
	DashboardSvc      dashboarddomain.Service
	PublicBillLimiter *ratelimit.PublicBillLimiter `optional:"true"`
	ObsMetrics        *obsmetrics.Metrics          `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	svc := &Server{
		engine:            p.Gin,
		cfg:               p.Cfg,
		clientSvc:         p.ClientSvc,
		companyProfileSvc: p.CompanyProfileSvc,
		taxRateSvc:        p.TaxRateSvc,
		invoiceSvc:        p.InvoiceSvc,
		paymentSvc:        p.PaymentSvc,
		ledgerSvc:         p.LedgerSvc,
		dashboardSvc:      p.DashboardSvc,
		publicBillLimiter: p.PublicBillLimiter,
		obsMetrics:        p.ObsMetrics,
		log:               log.Named("http.server"),
	}

	svc.registerPublicRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	s.engine.POST("/api/calculate", s.Calculate)
	s.engine.GET("/bill/:public_uuid", s.PublicBillRateLimit(), s.RenderPublicBill)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", orgcontext.GinMiddleware())

	api.GET("/dashboard/summary", s.GetDashboardSummary)

	// -------- Clients --------
	api.POST("/clients", s.CreateClient)
	api.GET("/clients", s.ListClients)
	api.GET("/clients/:id", s.GetClientByID)
	api.PATCH("/clients/:id", s.UpdateClient)
	api.DELETE("/clients/:id", s.DeleteClient)
	api.GET("/clients/:id/ledger", s.GetClientLedger)

	// -------- Tax rates --------
	api.POST("/tax-rates", s.CreateTaxRate)
	api.GET("/tax-rates", s.ListTaxRates)
	api.PATCH("/tax-rates/:id", s.UpdateTaxRate)
	api.POST("/tax-rates/:id/disable", s.DisableTaxRate)

	// -------- Company profiles --------
	api.POST("/company-profiles", s.CreateCompanyProfile)
	api.GET("/company-profiles", s.ListCompanyProfiles)
	api.GET("/company-profiles/:id", s.GetCompanyProfileByID)
	api.PATCH("/company-profiles/:id", s.UpdateCompanyProfile)
	api.POST("/company-profiles/:id/default", s.SetDefaultCompanyProfile)

	// -------- Invoices --------
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
	api.POST("/invoices/:id/send", s.SendInvoice)
	api.GET("/invoices/:id/document", s.GetInvoiceDocument)
	api.GET("/invoices/:id/render", s.RenderInvoice)

	// -------- Payments --------
	api.POST("/invoices/:id/payments", s.RecordPayment)
	api.GET("/invoices/:id/payments", s.ListInvoicePayments)
}
