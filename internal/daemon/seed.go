package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/hearth-app/hearth/internal/db/models"
)

const (
	seedUserEmail    = "admin@hearth.local"
	seedUserPassword = "changeme"
)

// seed creates the initial user when the users table is empty, so a fresh
// database has an account that can create the first group.
func seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	user := models.User{
		Email:    seedUserEmail,
		Password: models.HashPassword(seedUserPassword),
	}

	if err := db.Create(&user).Error; err != nil {
		return err
	}

	log.Warn().
		Str("email", seedUserEmail).
		Msg("seeded initial user with the default password, change it before exposing the service")

	return nil
}
