package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/catalog/internal/clock"
	"github.com/smallbiznis/catalog/internal/config"
	"github.com/smallbiznis/catalog/internal/observability"
	obsmiddleware "github.com/smallbiznis/catalog/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/catalog/internal/observability/metrics"
	obstracing "github.com/smallbiznis/catalog/internal/observability/tracing"
	productdomain "github.com/smallbiznis/catalog/internal/product/domain"
	"github.com/smallbiznis/catalog/internal/providers/pdf"
	"github.com/smallbiznis/catalog/internal/ratelimit"
	"github.com/smallbiznis/catalog/pkg/health"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, cors config.CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS(cors))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
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

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics, cfg.CORS)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr))
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
	engine       *gin.Engine
	cfg          config.Config
	productSvc   productdomain.Service
	pdf          pdf.Provider
	health       *health.Health
	obsMetrics   *obsmetrics.Metrics
	writeLimiter writeLimiter
	clock        clock.Clock
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	ProductSvc   productdomain.Service
	PDF          pdf.Provider
	Clock        clock.Clock             `optional:"true"`
	Health       *health.Health          `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
	WriteLimiter *ratelimit.WriteLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		productSvc: p.ProductSvc,
		pdf:        p.PDF,
		health:     p.Health,
		obsMetrics: p.ObsMetrics,
		clock:      p.Clock,
	}
	if svc.clock == nil {
		svc.clock = clock.System{}
	}
	if p.WriteLimiter.Enabled() {
		svc.writeLimiter = p.WriteLimiter
	}

	svc.registerProbeRoutes()
	svc.registerProductRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerProbeRoutes() {
	if s.health == nil {
		return
	}
	s.engine.GET("/livez", s.health.LiveHandler)
	s.engine.GET("/readyz", s.health.ReadyHandler)
}

func (s *Server) registerProductRoutes() {
	products := s.engine.Group("/products")
	{
		products.GET("", s.ListProducts)
		products.GET("/price-list.pdf", s.ExportPriceList)
		products.GET("/:id", s.GetProduct)

		products.POST("", s.WriteRateLimit(), s.CreateProduct)
		products.PUT("/:id", s.WriteRateLimit(), s.UpdateProduct)
		products.DELETE("/:id", s.WriteRateLimit(), s.DeleteProduct)
	}
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
