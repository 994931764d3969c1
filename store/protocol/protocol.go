package protocol

import (
	"context"

	"lever/core"
	"lever/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type protocolStore struct {
	db *db.DB
}

// New new protocol config store
func New(db *db.DB) core.IProtocolStore {
	return &protocolStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		return db.Update().Model(core.ProtocolConfig{}).AutoMigrate(core.ProtocolConfig{}).Error
	})
}

func (s *protocolStore) Find(ctx context.Context) (*core.ProtocolConfig, error) {
	var config core.ProtocolConfig
	if err := store.View(ctx, s.db).First(&config).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

func (s *protocolStore) Save(ctx context.Context, config *core.ProtocolConfig) error {
	if config.ID == 0 {
		config.ID = 1
		return store.Update(ctx, s.db).Create(config).Error
	}

	version := config.Version
	config.Version++
	tx := store.Update(ctx, s.db).Model(core.ProtocolConfig{}).
		Where("id=? and version=?", config.ID, version).
		Update(config)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrOptimisticLock
	}
	return nil
}
