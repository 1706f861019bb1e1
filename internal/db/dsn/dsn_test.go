package dsn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hearth-app/hearth/internal/config"
	"github.com/hearth-app/hearth/internal/db/dsn"
)

func TestCreate(t *testing.T) {
	cfg := &config.Config{
		DB: config.DB{
			Host:     "db.local",
			Port:     5432,
			User:     "hearth",
			Password: "secret",
			Name:     "hearth",
			Extras:   "sslmode=disable",
		},
	}

	assert.Equal(t,
		"host=db.local port=5432 user=hearth password=secret dbname=hearth sslmode=disable",
		dsn.Create(cfg))
}
