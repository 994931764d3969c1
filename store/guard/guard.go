package guard

import (
	"context"

	"lever/core"
	"lever/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type guardStore struct {
	db *db.DB
}

// New new same-block operation guard
func New(db *db.DB) core.IGuardStore {
	return &guardStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		return db.Update().Model(core.OperationLock{}).AutoMigrate(core.OperationLock{}).Error
	})
}

func (s *guardStore) Acquire(ctx context.Context, userID string, block int64) error {
	var lock core.OperationLock
	err := store.View(ctx, s.db).Where("user_id=? and block=?", userID, block).First(&lock).Error
	if err == nil {
		return core.ErrMEVSameBlockOperation
	}
	if !gorm.IsRecordNotFoundError(err) {
		return err
	}

	if err := store.Update(ctx, s.db).Create(&core.OperationLock{UserID: userID, Block: block}).Error; err != nil {
		// unique (user_id, block) index: a concurrent insert loses here
		return core.ErrMEVSameBlockOperation
	}

	return nil
}
