package boltrepo

import (
	"context"

	"github.com/kasirpos/kasir/internal/domain"
	bolt "go.etcd.io/bbolt"
)

type AuditRepository struct {
	db *bolt.DB
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b, err := ensureOwnerBucket(tx, entry.UserID, bucketAudit)
		if err != nil {
			return err
		}
		return put(b, itob(entry.ID), entry)
	})
}

func (r *AuditRepository) ListByUser(ctx context.Context, owner string, limit int) ([]*domain.AuditLog, error) {
	logs := make([]*domain.AuditLog, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, owner, bucketAudit)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(logs) >= limit {
				break
			}
			var entry domain.AuditLog
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			logs = append(logs, &entry)
		}
		return nil
	})
	return logs, err
}
