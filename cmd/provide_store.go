package cmd

import (
	"lever/core"
	"lever/store"
	"lever/store/event"
	"lever/store/guard"
	"lever/store/lender"
	"lever/store/position"
	"lever/store/protocol"
	"lever/store/registry"
	"lever/store/stake"
	"lever/store/vault"

	"github.com/fox-one/pkg/store/db"
)

func provideRunner(db *db.DB) core.TxRunner {
	return store.NewRunner(db)
}

func providePositionStore(db *db.DB) core.IPositionStore {
	return position.New(db)
}

func provideVaultStore(db *db.DB) core.IVaultStore {
	return vault.New(db)
}

func provideLenderStore(db *db.DB) core.ILenderStore {
	return lender.New(db)
}

func provideEventStore(db *db.DB) core.IEventStore {
	return event.New(db)
}

func provideGuardStore(db *db.DB) core.IGuardStore {
	return guard.New(db)
}

func provideStakeStore(db *db.DB) core.IStakeStore {
	return stake.New(db)
}

func provideProtocolStore(db *db.DB) core.IProtocolStore {
	return protocol.New(db)
}

func provideRegistryStore(db *db.DB) core.IRegistryStore {
	return registry.Cache(registry.New(db), registryCacheExpiry)
}
