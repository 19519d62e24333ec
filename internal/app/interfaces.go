package app

import (
	"github.com/kasirpos/kasir/config"
	"github.com/kasirpos/kasir/internal/identity"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/kasirpos/kasir/internal/service"
)

// StoreProvider provides persistence access
type StoreProvider interface {
	Store() repository.Store
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// ServicesProvider provides the business services
type ServicesProvider interface {
	Services() *service.Services
}

// IdentityProvider provides the configured token issuer
type IdentityProvider interface {
	Identity() identity.Provider
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	StoreProvider
	ConfigProvider
	ServicesProvider
	IdentityProvider

	MigrateDB() error
	InitDb() error
	Seed() error
	Release()
}
