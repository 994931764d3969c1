package cmd

import (
	"time"

	"lever/core"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

// registryCacheExpiry asset configs change rarely; prices carry their own
// freshness window on the row
const registryCacheExpiry = 10 * time.Second
