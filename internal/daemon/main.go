// Package daemon wires the process-wide services: database handle, schema
// migration and the web service. Everything here is constructed once at
// startup and passed down by reference.
package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/config"
	"github.com/hearth-app/hearth/internal/db/dsn"
	"github.com/hearth-app/hearth/internal/db/models"
	"github.com/hearth-app/hearth/internal/realtime"
	"github.com/hearth-app/hearth/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
	cfg        *config.Config
}

// Start starts the Daemon's web service and blocks until it stops.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// openDB opens the postgres connection. The mutation path relies on
// RETURNING throughout, so postgres is the only supported engine.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.Open(dsn.Create(cfg)), &gorm.Config{})
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupMemberRole{},
		&models.Album{},
		&models.Media{},
		&models.MediaComment{},
		&models.List{},
		&models.ListItem{},
		&models.Event{},
		&models.TextChannel{},
		&models.Message{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	if err = seed(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
		return nil
	}

	return &Daemon{
		webService: web.New(cfg, db, realtime.Noop{}),
		cfg:        cfg,
	}
}
