package app

import (
	"os"
	"time"
	_ "time/tzdata"

	EventBus "github.com/asaskevich/EventBus"
	"github.com/kasirpos/kasir/config"
	"github.com/kasirpos/kasir/internal/idgen"
	"github.com/kasirpos/kasir/internal/identity"
	"github.com/kasirpos/kasir/internal/inference"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/kasirpos/kasir/internal/repository/boltrepo"
	"github.com/kasirpos/kasir/internal/repository/gormrepo"
	"github.com/kasirpos/kasir/internal/service"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Application struct {
	appConfig *config.AppConfig
	store     repository.Store
	ids       *idgen.Snowflake
	identity  identity.Provider
	local     *identity.Local
	inference *inference.Client
	bus       EventBus.Bus
	services  *service.Services
	started   time.Time
}

// Ensure Application implements all interfaces
var (
	_ StoreProvider    = (*Application)(nil)
	_ ConfigProvider   = (*Application)(nil)
	_ ServicesProvider = (*Application)(nil)
	_ IdentityProvider = (*Application)(nil)
	_ AppContext       = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Store() repository.Store {
	return a.store
}

func (a *Application) Services() *service.Services {
	return a.services
}

func (a *Application) Identity() identity.Provider {
	return a.identity
}

// Init builds the logger, opens the configured store and wires the services.
func (a *Application) Init(cfg *config.AppConfig) error {
	a.appConfig = cfg
	a.started = time.Now()

	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	logger, err := buildLogger(cfg.Logger)
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	zap.ReplaceGlobals(logger)

	a.ids, err = idgen.New(cfg.System.NodeID)
	if err != nil {
		return err
	}

	if a.store, err = openStore(cfg); err != nil {
		return err
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)
	if err := a.MigrateDB(); err != nil {
		return err
	}

	if err := a.initIdentity(cfg.Auth); err != nil {
		return err
	}
	a.inference = inference.NewClient(cfg.Inference)

	a.bus = EventBus.New()
	if err := a.bus.SubscribeAsync(service.TopicAudit, a.writeAudit, false); err != nil {
		return errors.Wrap(err, "subscribe audit")
	}

	a.services = service.New(service.Deps{
		Store:    a.store,
		IDs:      a.ids,
		Identity: a.identity,
		Embedder: a.inference,
		OCR:      a.inference,
		Bus:      a.bus,
	})
	return nil
}

func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	if !cfg.FileEnable {
		return zapConfig.Build(zap.AddCaller())
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   false,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(lumberJackLogger),
			zapConfig.Level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zapConfig.Level,
		),
	)
	return zap.New(core, zap.AddCaller()), nil
}

func openStore(cfg *config.AppConfig) (repository.Store, error) {
	switch cfg.Database.Type {
	case "", "postgres":
		cfg.Database.Type = "postgres"
		store, err := gormrepo.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "bolt":
		store, err := boltrepo.Open(cfg.BoltPath())
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.Errorf("unsupported database type %q", cfg.Database.Type)
	}
}

func (a *Application) initIdentity(cfg config.AuthConfig) error {
	switch cfg.Provider {
	case "", "local":
		local, err := identity.NewLocal(a.store.Credentials(), cfg)
		if err != nil {
			return err
		}
		a.local = local
		a.identity = local
	case "remote":
		remote, err := identity.NewRemote(cfg)
		if err != nil {
			return err
		}
		a.identity = remote
	default:
		return errors.Errorf("unsupported auth provider %q", cfg.Provider)
	}
	zap.L().Info("identity provider ready", zap.String("provider", cfg.Provider))
	return nil
}

func (a *Application) MigrateDB() error {
	if err := a.store.Migrate(); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
		return err
	}
	return nil
}

// InitDb drops every table or bucket and recreates the empty schema.
func (a *Application) InitDb() error {
	return a.store.Reset()
}

// Release drains pending audit writes and closes the store.
func (a *Application) Release() {
	if a.bus != nil {
		a.bus.WaitAsync()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			zap.L().Error("close store", zap.Error(err))
		}
	}
	_ = zap.L().Sync()
}
