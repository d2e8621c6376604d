package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SlowTxThreshold is how long a transaction may stay open before a warning
// is logged. The transaction itself is never interrupted.
var SlowTxThreshold = 5 * time.Second

// Transaction runs fn inside a database transaction. fn's error (or a
// panic) rolls back; a nil return commits.
func Transaction(ctx context.Context, db *gorm.DB, log *zap.Logger, name string, fn func(tx *gorm.DB) error) error {
	start := time.Now()
	timer := time.AfterFunc(SlowTxThreshold, func() {
		log.Warn("transaction still open",
			zap.String("tx", name),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
	defer timer.Stop()

	return db.WithContext(ctx).Transaction(fn)
}
