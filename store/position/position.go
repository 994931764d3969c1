package position

import (
	"context"

	"lever/core"
	"lever/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.IPositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Position{})
		if err := tx.AutoMigrate(core.Position{}).Error; err != nil {
			return err
		}

		if err := db.Update().Model(core.CollateralHolding{}).AutoMigrate(core.CollateralHolding{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *positionStore) Create(ctx context.Context, position *core.Position) error {
	return store.Update(ctx, s.db).Create(position).Error
}

func (s *positionStore) Find(ctx context.Context, userID string, idx uint64) (*core.Position, error) {
	var position core.Position
	if err := store.View(ctx, s.db).Where("user_id=? and idx=?", userID, idx).First(&position).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrInvalidPosition
		}
		return nil, err
	}
	return &position, nil
}

func (s *positionStore) FindByUser(ctx context.Context, userID string) ([]*core.Position, error) {
	var positions []*core.Position
	if err := store.View(ctx, s.db).Where("user_id=?", userID).Order("idx").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (s *positionStore) All(ctx context.Context) ([]*core.Position, error) {
	var positions []*core.Position
	if err := store.View(ctx, s.db).Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (s *positionStore) CountByUser(ctx context.Context, userID string) (uint64, error) {
	var count uint64
	if err := store.View(ctx, s.db).Model(core.Position{}).Where("user_id=?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *positionStore) Update(ctx context.Context, position *core.Position) error {
	version := position.Version
	position.Version++
	tx := store.Update(ctx, s.db).Model(core.Position{}).
		Where("id=? and version=?", position.ID, version).
		Update(position)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrOptimisticLock
	}
	return nil
}

func (s *positionStore) Collaterals(ctx context.Context, positionID uint64) ([]*core.CollateralHolding, error) {
	var holdings []*core.CollateralHolding
	if err := store.View(ctx, s.db).Where("position_id=?", positionID).Order("asset_id").Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

func (s *positionStore) FindCollateral(ctx context.Context, positionID uint64, assetID string) (*core.CollateralHolding, error) {
	var holding core.CollateralHolding
	err := store.View(ctx, s.db).Where("position_id=? and asset_id=?", positionID, assetID).First(&holding).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &holding, nil
}

func (s *positionStore) SaveCollateral(ctx context.Context, holding *core.CollateralHolding) error {
	if holding.ID == 0 {
		return store.Update(ctx, s.db).Create(holding).Error
	}

	version := holding.Version
	holding.Version++
	tx := store.Update(ctx, s.db).Model(core.CollateralHolding{}).
		Where("id=? and version=?", holding.ID, version).
		Update(holding)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrOptimisticLock
	}
	return nil
}

func (s *positionStore) DeleteCollaterals(ctx context.Context, positionID uint64) error {
	return store.Update(ctx, s.db).Where("position_id=?", positionID).Delete(core.CollateralHolding{}).Error
}

func (s *positionStore) TotalSuppliedByAsset(ctx context.Context) (map[string]decimal.Decimal, error) {
	var holdings []*core.CollateralHolding
	if err := store.View(ctx, s.db).Find(&holdings).Error; err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, h := range holdings {
		totals[h.AssetID] = totals[h.AssetID].Add(h.Amount)
	}
	return totals, nil
}
