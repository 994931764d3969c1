package registry

import (
	"context"
	"time"

	"lever/core"
	"lever/pkg/id"

	"github.com/shopspring/decimal"
)

type registryService struct {
	config     *core.Config
	store      core.IRegistryStore
	eventStore core.IEventStore
	blockSrv   core.IBlockService
}

// New new registry service
func New(
	config *core.Config,
	store core.IRegistryStore,
	eventStore core.IEventStore,
	blockSrv core.IBlockService,
) core.IRegistryService {
	return &registryService{
		config:     config,
		store:      store,
		eventStore: eventStore,
		blockSrv:   blockSrv,
	}
}

func (s *registryService) GetAssetConfig(ctx context.Context, assetID string) (*core.AssetConfig, error) {
	return s.store.FindAsset(ctx, assetID)
}

func (s *registryService) GetPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	price, err := s.store.FindPrice(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	if !price.Price.IsPositive() {
		return decimal.Zero, core.ErrPriceNotFound
	}

	if time.Since(price.UpdatedAt) > s.config.MaxPriceAge() {
		return decimal.Zero, core.ErrStalePrice
	}

	return price.Price, nil
}

func (s *registryService) RegisterAsset(ctx context.Context, caller string, asset *core.AssetConfig) error {
	if !s.config.IsAdmin(caller) {
		return core.ErrOperationForbidden
	}

	if asset.BorrowThreshold > asset.LiquidationThreshold {
		return core.ErrInvalidConfig
	}

	if asset.Tier != core.AssetTierIsolated && asset.IsolationDebtCap.IsPositive() {
		return core.ErrInvalidConfig
	}

	if err := s.store.SaveAsset(ctx, asset); err != nil {
		return err
	}

	block, _ := s.blockSrv.CurrentBlock(ctx)
	return s.eventStore.Create(ctx, &core.Event{
		TraceID: id.GenTraceID(),
		Type:    core.EventTypeAssetRegistered,
		UserID:  caller,
		AssetID: asset.AssetID,
		Block:   block,
	})
}

func (s *registryService) SetPrice(ctx context.Context, assetID string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return core.ErrZeroAmount
	}

	if _, err := s.store.FindAsset(ctx, assetID); err != nil {
		return err
	}

	if err := s.store.SavePrice(ctx, assetID, price, time.Now()); err != nil {
		return err
	}

	block, _ := s.blockSrv.CurrentBlock(ctx)
	return s.eventStore.Create(ctx, &core.Event{
		TraceID: id.GenTraceID(),
		Type:    core.EventTypePriceUpdated,
		AssetID: assetID,
		Amount:  price,
		Block:   block,
	})
}
