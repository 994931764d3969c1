package lender

import (
	"context"

	"lever/core"
	"lever/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type lenderStore struct {
	db *db.DB
}

// New new lender store
func New(db *db.DB) core.ILenderStore {
	return &lenderStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		return db.Update().Model(core.Lender{}).AutoMigrate(core.Lender{}).Error
	})
}

func (s *lenderStore) Find(ctx context.Context, userID string) (*core.Lender, error) {
	var lender core.Lender
	if err := store.View(ctx, s.db).Where("user_id=?", userID).First(&lender).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Lender{UserID: userID}, nil
		}
		return nil, err
	}
	return &lender, nil
}

func (s *lenderStore) Save(ctx context.Context, lender *core.Lender) error {
	if lender.ID == 0 {
		return store.Update(ctx, s.db).Create(lender).Error
	}

	version := lender.Version
	lender.Version++
	tx := store.Update(ctx, s.db).Model(core.Lender{}).
		Where("id=? and version=?", lender.ID, version).
		Update(lender)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrOptimisticLock
	}
	return nil
}

func (s *lenderStore) All(ctx context.Context) ([]*core.Lender, error) {
	var lenders []*core.Lender
	if err := store.View(ctx, s.db).Find(&lenders).Error; err != nil {
		return nil, err
	}
	return lenders, nil
}
