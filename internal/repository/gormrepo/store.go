// Package gormrepo implements the repository ports on a relational database through gorm.
package gormrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/kasirpos/kasir/config"
	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db           *gorm.DB
	users        *UserRepository
	credentials  *CredentialRepository
	products     *ProductRepository
	transactions *TransactionRepository
	audit        *AuditRepository
}

var _ repository.Store = (*Store)(nil)

// Open connects to PostgreSQL using the database section of the config.
func Open(cfg config.DBConfig) (*Store, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Passwd, cfg.Name, cfg.Port)

	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(level),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "postgres pool")
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConn)
	sqlDB.SetMaxIdleConns(cfg.IdleConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	zap.L().Info("postgres connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name))
	return New(db), nil
}

// New wraps an existing gorm handle. Used by Open and by tests.
func New(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		users:        &UserRepository{db: db},
		credentials:  &CredentialRepository{db: db},
		products:     &ProductRepository{db: db},
		transactions: &TransactionRepository{db: db},
		audit:        &AuditRepository{db: db},
	}
}

func (s *Store) Users() repository.UserRepository { return s.users }

func (s *Store) Credentials() repository.CredentialRepository { return s.credentials }

func (s *Store) Products() repository.ProductRepository { return s.products }

func (s *Store) Transactions() repository.TransactionRepository { return s.transactions }

func (s *Store) Audit() repository.AuditRepository { return s.audit }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Migrate() error {
	return errors.Wrap(s.db.Migrator().AutoMigrate(domain.Tables...), "auto migrate")
}

func (s *Store) Reset() error {
	if err := s.db.Migrator().DropTable(domain.Tables...); err != nil {
		return errors.Wrap(err, "drop tables")
	}
	return s.Migrate()
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// duplicate maps a translated unique violation to the repository sentinel
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicate
	}
	return err
}

// notFound maps gorm's miss to the repository sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}
