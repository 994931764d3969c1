package coretest

import (
	"context"
	"fmt"
	"time"

	"lever/core"

	"github.com/shopspring/decimal"
)

// PositionStore in-memory core.IPositionStore
type PositionStore struct {
	DB *DB
}

func (s *PositionStore) Create(ctx context.Context, position *core.Position) error {
	position.ID = s.DB.nextSeq()
	position.CreatedAt = time.Now()
	s.DB.Positions = append(s.DB.Positions, position)
	return nil
}

func (s *PositionStore) Find(ctx context.Context, userID string, idx uint64) (*core.Position, error) {
	for _, p := range s.DB.Positions {
		if p.UserID == userID && p.Idx == idx {
			c := *p
			return &c, nil
		}
	}
	return nil, core.ErrInvalidPosition
}

func (s *PositionStore) FindByUser(ctx context.Context, userID string) ([]*core.Position, error) {
	var out []*core.Position
	for _, p := range s.DB.Positions {
		if p.UserID == userID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *PositionStore) All(ctx context.Context) ([]*core.Position, error) {
	return clonePositions(s.DB.Positions), nil
}

func (s *PositionStore) CountByUser(ctx context.Context, userID string) (uint64, error) {
	var count uint64
	for _, p := range s.DB.Positions {
		if p.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *PositionStore) Update(ctx context.Context, position *core.Position) error {
	for i, p := range s.DB.Positions {
		if p.ID == position.ID && p.Version == position.Version {
			position.Version++
			c := *position
			s.DB.Positions[i] = &c
			return nil
		}
	}
	return fmt.Errorf("optimistic lock: position %d", position.ID)
}

func (s *PositionStore) Collaterals(ctx context.Context, positionID uint64) ([]*core.CollateralHolding, error) {
	var out []*core.CollateralHolding
	for _, h := range s.DB.Holdings {
		if h.PositionID == positionID {
			c := *h
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *PositionStore) FindCollateral(ctx context.Context, positionID uint64, assetID string) (*core.CollateralHolding, error) {
	for _, h := range s.DB.Holdings {
		if h.PositionID == positionID && h.AssetID == assetID {
			c := *h
			return &c, nil
		}
	}
	return nil, nil
}

func (s *PositionStore) SaveCollateral(ctx context.Context, holding *core.CollateralHolding) error {
	if holding.ID == 0 {
		holding.ID = s.DB.nextSeq()
		c := *holding
		s.DB.Holdings = append(s.DB.Holdings, &c)
		return nil
	}

	for i, h := range s.DB.Holdings {
		if h.ID == holding.ID && h.Version == holding.Version {
			holding.Version++
			c := *holding
			s.DB.Holdings[i] = &c
			return nil
		}
	}
	return fmt.Errorf("optimistic lock: holding %d", holding.ID)
}

func (s *PositionStore) DeleteCollaterals(ctx context.Context, positionID uint64) error {
	out := s.DB.Holdings[:0]
	for _, h := range s.DB.Holdings {
		if h.PositionID != positionID {
			out = append(out, h)
		}
	}
	s.DB.Holdings = out
	return nil
}

func (s *PositionStore) TotalSuppliedByAsset(ctx context.Context) (map[string]decimal.Decimal, error) {
	totals := make(map[string]decimal.Decimal)
	for _, h := range s.DB.Holdings {
		totals[h.AssetID] = totals[h.AssetID].Add(h.Amount)
	}
	return totals, nil
}

// VaultStore in-memory core.IVaultStore
type VaultStore struct {
	DB *DB
}

func (s *VaultStore) Create(ctx context.Context, vault *core.VaultState) error {
	c := *vault
	s.DB.Vault = &c
	return nil
}

func (s *VaultStore) Find(ctx context.Context) (*core.VaultState, error) {
	if s.DB.Vault == nil {
		return nil, nil
	}
	c := *s.DB.Vault
	return &c, nil
}

func (s *VaultStore) Update(ctx context.Context, vault *core.VaultState) error {
	if s.DB.Vault == nil || s.DB.Vault.Version != vault.Version {
		return fmt.Errorf("optimistic lock: vault")
	}
	vault.Version++
	c := *vault
	s.DB.Vault = &c
	return nil
}

// LenderStore in-memory core.ILenderStore
type LenderStore struct {
	DB *DB
}

func (s *LenderStore) Find(ctx context.Context, userID string) (*core.Lender, error) {
	for _, l := range s.DB.Lenders {
		if l.UserID == userID {
			c := *l
			return &c, nil
		}
	}
	return &core.Lender{UserID: userID}, nil
}

func (s *LenderStore) Save(ctx context.Context, lender *core.Lender) error {
	if lender.ID == 0 {
		lender.ID = s.DB.nextSeq()
		c := *lender
		s.DB.Lenders = append(s.DB.Lenders, &c)
		return nil
	}

	for i, l := range s.DB.Lenders {
		if l.ID == lender.ID && l.Version == lender.Version {
			lender.Version++
			c := *lender
			s.DB.Lenders[i] = &c
			return nil
		}
	}
	return fmt.Errorf("optimistic lock: lender %d", lender.ID)
}

func (s *LenderStore) All(ctx context.Context) ([]*core.Lender, error) {
	return cloneLenders(s.DB.Lenders), nil
}

// StakeStore in-memory core.IStakeStore
type StakeStore struct {
	DB *DB
}

func (s *StakeStore) Find(ctx context.Context, userID string) (*core.GovernanceStake, error) {
	for _, st := range s.DB.Stakes {
		if st.UserID == userID {
			c := *st
			return &c, nil
		}
	}
	return &core.GovernanceStake{UserID: userID}, nil
}

func (s *StakeStore) Save(ctx context.Context, stake *core.GovernanceStake) error {
	if stake.ID == 0 {
		stake.ID = s.DB.nextSeq()
		c := *stake
		s.DB.Stakes = append(s.DB.Stakes, &c)
		return nil
	}

	for i, st := range s.DB.Stakes {
		if st.ID == stake.ID && st.Version == stake.Version {
			stake.Version++
			c := *stake
			s.DB.Stakes[i] = &c
			return nil
		}
	}
	return fmt.Errorf("optimistic lock: stake %d", stake.ID)
}

// EventStore in-memory core.IEventStore
type EventStore struct {
	DB *DB
}

func (s *EventStore) Create(ctx context.Context, event *core.Event) error {
	event.ID = s.DB.nextSeq()
	event.CreatedAt = time.Now()
	s.DB.Events = append(s.DB.Events, event)
	return nil
}

func (s *EventStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Event, error) {
	var out []*core.Event
	for _, e := range s.DB.Events {
		if e.ID > fromID {
			out = append(out, e)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *EventStore) ListByUser(ctx context.Context, userID string, fromID uint64, limit int) ([]*core.Event, error) {
	var out []*core.Event
	for _, e := range s.DB.Events {
		if e.UserID == userID && e.ID > fromID {
			out = append(out, e)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ByType events of one type, newest last
func (s *EventStore) ByType(t core.EventType) []*core.Event {
	var out []*core.Event
	for _, e := range s.DB.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// GuardStore in-memory core.IGuardStore
type GuardStore struct {
	DB *DB
}

func (s *GuardStore) Acquire(ctx context.Context, userID string, block int64) error {
	key := fmt.Sprintf("%s:%d", userID, block)
	if s.DB.Locks[key] {
		return core.ErrMEVSameBlockOperation
	}
	s.DB.Locks[key] = true
	return nil
}

// RegistryStore in-memory core.IRegistryStore
type RegistryStore struct {
	DB *DB
}

func (s *RegistryStore) SaveAsset(ctx context.Context, asset *core.AssetConfig) error {
	if asset.ID == 0 {
		asset.ID = s.DB.nextSeq()
	}
	c := *asset
	s.DB.Assets[asset.AssetID] = &c
	return nil
}

func (s *RegistryStore) FindAsset(ctx context.Context, assetID string) (*core.AssetConfig, error) {
	asset, ok := s.DB.Assets[assetID]
	if !ok {
		return nil, core.ErrAssetNotFound
	}
	c := *asset
	return &c, nil
}

func (s *RegistryStore) AllAssets(ctx context.Context) ([]*core.AssetConfig, error) {
	out := make([]*core.AssetConfig, 0, len(s.DB.Assets))
	for _, a := range s.DB.Assets {
		c := *a
		out = append(out, &c)
	}
	return out, nil
}

func (s *RegistryStore) SavePrice(ctx context.Context, assetID string, price decimal.Decimal, at time.Time) error {
	s.DB.Prices[assetID] = &core.Price{AssetID: assetID, Price: price, UpdatedAt: at}
	return nil
}

func (s *RegistryStore) FindPrice(ctx context.Context, assetID string) (*core.Price, error) {
	price, ok := s.DB.Prices[assetID]
	if !ok {
		return nil, core.ErrPriceNotFound
	}
	c := *price
	return &c, nil
}

// ProtocolStore in-memory core.IProtocolStore
type ProtocolStore struct {
	DB *DB
}

func (s *ProtocolStore) Find(ctx context.Context) (*core.ProtocolConfig, error) {
	if s.DB.Protocol == nil {
		return nil, nil
	}
	c := *s.DB.Protocol
	return &c, nil
}

func (s *ProtocolStore) Save(ctx context.Context, config *core.ProtocolConfig) error {
	if config.ID == 0 {
		config.ID = 1
	} else {
		config.Version++
	}
	c := *config
	s.DB.Protocol = &c
	return nil
}
