package vault

import (
	"context"

	"lever/core"
	"lever/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type vaultStore struct {
	db *db.DB
}

// New new vault store
func New(db *db.DB) core.IVaultStore {
	return &vaultStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		return db.Update().Model(core.VaultState{}).AutoMigrate(core.VaultState{}).Error
	})
}

func (s *vaultStore) Create(ctx context.Context, vault *core.VaultState) error {
	return store.Update(ctx, s.db).Create(vault).Error
}

func (s *vaultStore) Find(ctx context.Context) (*core.VaultState, error) {
	var vault core.VaultState
	if err := store.View(ctx, s.db).First(&vault).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &vault, nil
}

func (s *vaultStore) Update(ctx context.Context, vault *core.VaultState) error {
	version := vault.Version
	vault.Version++
	tx := store.Update(ctx, s.db).Model(core.VaultState{}).
		Where("id=? and version=?", vault.ID, version).
		Update(vault)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrOptimisticLock
	}
	return nil
}
