// Package api exposes the price and user services over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"runetick/config"
	"runetick/internal/live"
	"runetick/internal/market"
	"runetick/internal/metrics"
	"runetick/internal/timeseries"
	"runetick/internal/userstore"
	"runetick/pkg/osrsnews"
	"runetick/pkg/osrswiki"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Market is the price service behind the /api/items and /api/misc routes.
type Market interface {
	PriceHistory(ctx context.Context, id int64, interval timeseries.Interval) (*market.PriceHistory, error)
	Indicators(ctx context.Context, id int64, interval timeseries.Interval) (*market.Indicators, error)
	LatestPrice(ctx context.Context, id int64) (*market.ItemSummary, error)
	MultipleItems(ctx context.Context, ids []int64) (map[string]market.ItemPrice, error)
	LatestPrices(ctx context.Context) (map[string]market.Quote, error)
	Changes() map[string][]market.Change
	Mappings(ctx context.Context) ([]osrswiki.ItemMapping, error)
	VolumeData(ctx context.Context) (map[string]market.Volume, error)
	Regulations(ctx context.Context) (json.RawMessage, error)
	AlchCost(ctx context.Context) (*market.AlchCost, error)
	Indices(ctx context.Context) (map[string]market.Index, error)
	News(ctx context.Context) (*osrsnews.Feed, error)
}

// Users is the per-user document store behind /api/users.
type Users interface {
	Ensure(ctx context.Context, uid, email string) (*userstore.Settings, error)
	Get(ctx context.Context, uid string) (*userstore.Settings, error)
	Update(ctx context.Context, uid string, patch []byte) (*userstore.Settings, error)
	Delete(ctx context.Context, uid string) error
	AddLog(ctx context.Context, uid string, log userstore.TradeLog) error
	Logs(ctx context.Context, uid string) ([]userstore.TradeLog, error)
	DeleteLog(ctx context.Context, uid, id string) error
	AddToWatchlist(ctx context.Context, uid string, itemID int64) error
	Watchlist(ctx context.Context, uid string) ([]int64, error)
	RemoveFromWatchlist(ctx context.Context, uid string, itemID int64) error
	JoinBeta(ctx context.Context, uid string) error
}

// Live upgrades a request to the websocket price feed.
type Live interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

type Deps struct {
	Market   Market
	Users    Users
	Live     Live
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
	Now      func() time.Time // defaults to time.Now
}

type Server struct {
	engine *gin.Engine
	http   *http.Server
	log    *zap.Logger
}

// New builds the router. cfg.AllowedOrigins and cfg.RateLimit apply to every route.
func New(cfg config.ServerConfig, auth config.AuthConfig, deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	log := deps.Log.Named("api")

	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		accessLog(log),
		observe(deps.Metrics),
		cors.New(corsCfg),
		newIPLimiter(cfg.RateLimit, deps.Now).middleware(deps.Metrics),
	)

	h := &handler{
		market: deps.Market,
		users:  deps.Users,
		live:   deps.Live,
		log:    log,
		now:    deps.Now,
	}
	registerRoutes(engine, h, newAuthenticator(auth), deps.Gatherer)

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: log,
	}
}

func registerRoutes(r *gin.Engine, h *handler, auth *authenticator, gatherer prometheus.Gatherer) {
	r.GET("/api/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	authed := r.Group("", auth.middleware())
	authed.GET("/api/live", h.liveClock)
	authed.GET("/ws/prices", h.serveWS)

	items := authed.Group("/api/items")
	{
		items.GET("/price", h.price)
		items.GET("/indicators", h.indicators)
		items.GET("/latest-price", h.latestPrice)
		items.GET("/multiple-items", h.multipleItems)
		items.GET("/latest-prices", h.latestPrices)
		items.GET("/changes", h.changes)
		items.GET("/mappings", h.mappings)
		items.GET("/volume-data", h.volumeData)
		items.GET("/regulations", h.regulations)
		items.GET("/alch-cost", h.alchCost)
		items.GET("/indices", h.indices)
	}

	misc := authed.Group("/api/misc")
	misc.GET("/osrs-news", h.news)

	users := authed.Group("/api/users")
	{
		users.POST("", h.ensureUser)
		users.GET("", h.getUser)
		users.PUT("", h.updateUser)
		users.DELETE("", h.deleteUser)
		users.POST("/logs", h.addLog)
		users.GET("/logs", h.logs)
		users.DELETE("/logs/:logId", h.deleteLog)
		users.POST("/watchlist", h.addToWatchlist)
		users.GET("/watchlist", h.watchlist)
		users.DELETE("/watchlist/:itemId", h.removeFromWatchlist)
		users.POST("/join-beta", h.joinBeta)
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}

var _ Live = (*live.Hub)(nil)
