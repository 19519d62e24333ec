// Package boltrepo implements the repository ports on an embedded bbolt file.
//
// Layout:
//
//	users/<uid>/profile            user document
//	users/<uid>/products/<id>      product documents
//	users/<uid>/transactions/<id>  transaction documents with embedded items
//	users/<uid>/audit/<id>         audit entries
//	credentials/<email>            credential documents
//
// Numeric ids are stored big-endian so cursor order is creation order.
package boltrepo

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	bucketUsers        = []byte("users")
	bucketCredentials  = []byte("credentials")
	bucketProducts     = []byte("products")
	bucketTransactions = []byte("transactions")
	bucketAudit        = []byte("audit")
	keyProfile         = []byte("profile")
)

type Store struct {
	db *bolt.DB
}

var _ repository.Store = (*Store)(nil)

// Open opens (creating if needed) the bolt file at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt %s", path)
	}
	zap.L().Info("bolt store opened", zap.String("path", path))
	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Users() repository.UserRepository { return &UserRepository{db: s.db} }

func (s *Store) Credentials() repository.CredentialRepository {
	return &CredentialRepository{db: s.db}
}

func (s *Store) Products() repository.ProductRepository { return &ProductRepository{db: s.db} }

func (s *Store) Transactions() repository.TransactionRepository {
	return &TransactionRepository{db: s.db}
}

func (s *Store) Audit() repository.AuditRepository { return &AuditRepository{db: s.db} }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketUsers) == nil {
			return errors.New("bolt store not migrated")
		}
		return nil
	})
}

func (s *Store) Migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketUsers, bucketCredentials} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "create bucket %s", name)
			}
		}
		return nil
	})
}

func (s *Store) Reset() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketUsers, bucketCredentials} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "reset bolt store")
	}
	return s.Migrate()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

// ownerBucket returns users/<owner>/<name>, or nil when it does not exist.
func ownerBucket(tx *bolt.Tx, owner string, name []byte) *bolt.Bucket {
	user := tx.Bucket(bucketUsers).Bucket([]byte(owner))
	if user == nil {
		return nil
	}
	if name == nil {
		return user
	}
	return user.Bucket(name)
}

// ensureOwnerBucket creates users/<owner>/<name> on demand inside a writable tx.
func ensureOwnerBucket(tx *bolt.Tx, owner string, name []byte) (*bolt.Bucket, error) {
	user, err := tx.Bucket(bucketUsers).CreateBucketIfNotExists([]byte(owner))
	if err != nil {
		return nil, err
	}
	if name == nil {
		return user, nil
	}
	return user.CreateBucketIfNotExists(name)
}

func put(b *bolt.Bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}
