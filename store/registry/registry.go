package registry

import (
	"context"
	"time"

	"lever/core"
	"lever/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type registryStore struct {
	db *db.DB
}

// New new registry store
func New(db *db.DB) core.IRegistryStore {
	return &registryStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		if err := db.Update().Model(core.AssetConfig{}).AutoMigrate(core.AssetConfig{}).Error; err != nil {
			return err
		}

		return db.Update().Model(core.Price{}).AutoMigrate(core.Price{}).Error
	})
}

func (s *registryStore) SaveAsset(ctx context.Context, asset *core.AssetConfig) error {
	if asset.ID == 0 {
		return store.Update(ctx, s.db).Create(asset).Error
	}

	version := asset.Version
	asset.Version++
	tx := store.Update(ctx, s.db).Model(core.AssetConfig{}).
		Where("id=? and version=?", asset.ID, version).
		Update(asset)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrOptimisticLock
	}
	return nil
}

func (s *registryStore) FindAsset(ctx context.Context, assetID string) (*core.AssetConfig, error) {
	var asset core.AssetConfig
	if err := store.View(ctx, s.db).Where("asset_id=?", assetID).First(&asset).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

func (s *registryStore) AllAssets(ctx context.Context) ([]*core.AssetConfig, error) {
	var assets []*core.AssetConfig
	if err := store.View(ctx, s.db).Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (s *registryStore) SavePrice(ctx context.Context, assetID string, price decimal.Decimal, at time.Time) error {
	var row core.Price
	err := store.View(ctx, s.db).Where("asset_id=?", assetID).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return store.Update(ctx, s.db).Create(&core.Price{AssetID: assetID, Price: price, UpdatedAt: at}).Error
	}
	if err != nil {
		return err
	}

	version := row.Version
	tx := store.Update(ctx, s.db).Model(core.Price{}).
		Where("id=? and version=?", row.ID, version).
		Updates(map[string]interface{}{
			"price":      price,
			"updated_at": at,
			"version":    version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrOptimisticLock
	}
	return nil
}

func (s *registryStore) FindPrice(ctx context.Context, assetID string) (*core.Price, error) {
	var price core.Price
	if err := store.View(ctx, s.db).Where("asset_id=?", assetID).First(&price).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrPriceNotFound
		}
		return nil, err
	}
	return &price, nil
}
