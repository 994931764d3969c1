// Package coretest provides in-memory test doubles for the core store
// interfaces, with a Runner that snapshots state before an operation and
// restores it on error, mirroring the all-or-nothing transactional
// substrate the real stores get from the database.
package coretest

import (
	"context"
	"time"

	"lever/core"

	"github.com/fox-one/pkg/property"
	"github.com/shopspring/decimal"
)

// DB shared in-memory state of one test scenario
type DB struct {
	Positions  []*core.Position
	Holdings   []*core.CollateralHolding
	Vault      *core.VaultState
	Lenders    []*core.Lender
	Stakes     []*core.GovernanceStake
	Events     []*core.Event
	Locks      map[string]bool
	Assets     map[string]*core.AssetConfig
	Prices     map[string]*core.Price
	Protocol   *core.ProtocolConfig
	Properties map[string]interface{}

	nextID uint64
}

// NewDB empty in-memory state
func NewDB() *DB {
	return &DB{
		Locks:      make(map[string]bool),
		Assets:     make(map[string]*core.AssetConfig),
		Prices:     make(map[string]*core.Price),
		Properties: make(map[string]interface{}),
	}
}

func (db *DB) nextSeq() uint64 {
	db.nextID++
	return db.nextID
}

func (db *DB) snapshot() *DB {
	snap := &DB{
		Positions:  clonePositions(db.Positions),
		Holdings:   cloneHoldings(db.Holdings),
		Lenders:    cloneLenders(db.Lenders),
		Stakes:     cloneStakes(db.Stakes),
		Events:     append([]*core.Event(nil), db.Events...),
		Locks:      make(map[string]bool, len(db.Locks)),
		Assets:     make(map[string]*core.AssetConfig, len(db.Assets)),
		Prices:     make(map[string]*core.Price, len(db.Prices)),
		Properties: make(map[string]interface{}, len(db.Properties)),
		nextID:     db.nextID,
	}

	if db.Vault != nil {
		v := *db.Vault
		snap.Vault = &v
	}
	if db.Protocol != nil {
		p := *db.Protocol
		snap.Protocol = &p
	}
	for k, v := range db.Locks {
		snap.Locks[k] = v
	}
	for k, v := range db.Assets {
		a := *v
		snap.Assets[k] = &a
	}
	for k, v := range db.Prices {
		p := *v
		snap.Prices[k] = &p
	}
	for k, v := range db.Properties {
		snap.Properties[k] = v
	}

	return snap
}

func (db *DB) restore(snap *DB) {
	db.Positions = snap.Positions
	db.Holdings = snap.Holdings
	db.Vault = snap.Vault
	db.Lenders = snap.Lenders
	db.Stakes = snap.Stakes
	db.Events = snap.Events
	db.Locks = snap.Locks
	db.Assets = snap.Assets
	db.Prices = snap.Prices
	db.Protocol = snap.Protocol
	db.Properties = snap.Properties
	db.nextID = snap.nextID
}

func clonePositions(in []*core.Position) []*core.Position {
	out := make([]*core.Position, 0, len(in))
	for _, p := range in {
		c := *p
		out = append(out, &c)
	}
	return out
}

func cloneHoldings(in []*core.CollateralHolding) []*core.CollateralHolding {
	out := make([]*core.CollateralHolding, 0, len(in))
	for _, h := range in {
		c := *h
		out = append(out, &c)
	}
	return out
}

func cloneLenders(in []*core.Lender) []*core.Lender {
	out := make([]*core.Lender, 0, len(in))
	for _, l := range in {
		c := *l
		out = append(out, &c)
	}
	return out
}

func cloneStakes(in []*core.GovernanceStake) []*core.GovernanceStake {
	out := make([]*core.GovernanceStake, 0, len(in))
	for _, s := range in {
		c := *s
		out = append(out, &c)
	}
	return out
}

// Runner pass-through core.TxRunner with rollback-on-error semantics
type Runner struct {
	DB *DB
}

type txKey struct{}

// Tx run fn; restore the pre-state when it fails. Nested calls join
// the outer transaction instead of snapshotting again, matching the
// db-backed runner.
func (r *Runner) Tx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	snap := r.DB.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		r.DB.restore(snap)
		return err
	}
	return nil
}

// Blocks settable core.IBlockService
type Blocks struct {
	Current int64
}

// CurrentBlock current block
func (b *Blocks) CurrentBlock(ctx context.Context) (int64, error) {
	return b.Current, nil
}

// Next advance one block
func (b *Blocks) Next() {
	b.Current++
}

// Registry static core.AssetRegistry double
type Registry struct {
	DB *DB
}

// GetAssetConfig lookup asset config
func (r *Registry) GetAssetConfig(ctx context.Context, assetID string) (*core.AssetConfig, error) {
	asset, ok := r.DB.Assets[assetID]
	if !ok {
		return nil, core.ErrAssetNotFound
	}
	return asset, nil
}

// GetPrice lookup price
func (r *Registry) GetPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	price, ok := r.DB.Prices[assetID]
	if !ok || !price.Price.IsPositive() {
		return decimal.Zero, core.ErrPriceNotFound
	}
	return price.Price, nil
}

// SetPrice seed a price
func (db *DB) SetPrice(assetID string, price decimal.Decimal) {
	db.Prices[assetID] = &core.Price{AssetID: assetID, Price: price, UpdatedAt: time.Now()}
}

// Properties in-memory property.Store
type Properties struct {
	DB *DB
}

var _ property.Store = (*Properties)(nil)

// Get the stored value, zero when absent
func (p *Properties) Get(ctx context.Context, key string) (property.Value, error) {
	if v, ok := p.DB.Properties[key]; ok {
		return property.Parse(v), nil
	}
	var v property.Value
	return v, nil
}

// Save store the value
func (p *Properties) Save(ctx context.Context, key string, value interface{}) error {
	p.DB.Properties[key] = value
	return nil
}

// Expire drop the key
func (p *Properties) Expire(ctx context.Context, key string) error {
	delete(p.DB.Properties, key)
	return nil
}

// List all stored values
func (p *Properties) List(ctx context.Context) (map[string]property.Value, error) {
	values := make(map[string]property.Value, len(p.DB.Properties))
	for k, v := range p.DB.Properties {
		values[k] = property.Parse(v)
	}
	return values, nil
}
