// Package web builds and runs the JSON API service.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/config"
	fiberlogger "github.com/hearth-app/hearth/internal/logger/adapter/fiber"
	"github.com/hearth-app/hearth/internal/realtime"
	"github.com/hearth-app/hearth/internal/web/handler/album"
	"github.com/hearth-app/hearth/internal/web/handler/calendar"
	"github.com/hearth-app/hearth/internal/web/handler/channel"
	"github.com/hearth-app/hearth/internal/web/handler/group"
	"github.com/hearth-app/hearth/internal/web/handler/list"
	"github.com/hearth-app/hearth/internal/web/middleware/identity"
	"github.com/hearth-app/hearth/internal/web/middleware/reqcache"
)

const (
	// CheckAliveURI is the liveness probe path.
	CheckAliveURI = "/checkalive"
	// MetricsURI is the prometheus scrape path.
	MetricsURI = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	resolver     *authz.Resolver
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	// Wait interrupt or shutdown request through /shutdown
	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, broadcaster realtime.Broadcaster) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	// access log
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAliveURI,
	}))

	service := &Service{
		cfg:      cfg,
		App:      app,
		db:       db,
		resolver: authz.NewResolver(db),
	}
	service.alive.Store(true)

	app.Get(CheckAliveURI, service.checkAlive)
	app.Get(MetricsURI, adaptor.HTTPHandler(promhttp.Handler()))

	// every API route runs with a verified identity and a fresh
	// per-request membership cache
	app.Use("/api", identity.New(identity.HeaderVerifier{}), reqcache.New())

	group.Handler.Init(app, cfg, db, service.resolver)
	album.Handler.Init(app, cfg, db, service.resolver)
	list.Handler.Init(app, cfg, db, service.resolver)
	calendar.Handler.Init(app, cfg, db, service.resolver)
	channel.Handler.Init(app, cfg, db, service.resolver, broadcaster)

	return service
}

// checkAlive reports liveness; during graceful shutdown it returns 503 so
// the load balancer drains this instance.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendStatus(fiber.StatusOK)
}
