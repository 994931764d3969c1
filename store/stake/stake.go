package stake

import (
	"context"

	"lever/core"
	"lever/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type stakeStore struct {
	db *db.DB
}

// New new governance stake store
func New(db *db.DB) core.IStakeStore {
	return &stakeStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		return db.Update().Model(core.GovernanceStake{}).AutoMigrate(core.GovernanceStake{}).Error
	})
}

func (s *stakeStore) Find(ctx context.Context, userID string) (*core.GovernanceStake, error) {
	var stake core.GovernanceStake
	if err := store.View(ctx, s.db).Where("user_id=?", userID).First(&stake).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.GovernanceStake{UserID: userID}, nil
		}
		return nil, err
	}
	return &stake, nil
}

func (s *stakeStore) Save(ctx context.Context, stake *core.GovernanceStake) error {
	if stake.ID == 0 {
		return store.Update(ctx, s.db).Create(stake).Error
	}

	version := stake.Version
	stake.Version++
	tx := store.Update(ctx, s.db).Model(core.GovernanceStake{}).
		Where("id=? and version=?", stake.ID, version).
		Update(stake)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrOptimisticLock
	}
	return nil
}
