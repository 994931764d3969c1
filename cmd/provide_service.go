package cmd

import (
	"lever/core"
	"lever/service/block"
	creditservice "lever/service/credit"
	interestservice "lever/service/interest"
	liquidationservice "lever/service/liquidation"
	positionservice "lever/service/position"
	protocolservice "lever/service/protocol"
	registryservice "lever/service/registry"
	vaultservice "lever/service/vault"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
)

// services the service graph of one process
type services struct {
	block       core.IBlockService
	registry    core.IRegistryService
	credit      core.ICreditService
	interest    core.IInterestService
	position    core.IPositionService
	liquidation core.ILiquidationService
	vault       core.IVaultService
	protocol    core.IProtocolService
}

type stores struct {
	runner     core.TxRunner
	positions  core.IPositionStore
	vaults     core.IVaultStore
	lenders    core.ILenderStore
	events     core.IEventStore
	guards     core.IGuardStore
	stakes     core.IStakeStore
	protocols  core.IProtocolStore
	registry   core.IRegistryStore
	properties property.Store
}

func provideStores(db *db.DB) *stores {
	return &stores{
		runner:     provideRunner(db),
		positions:  providePositionStore(db),
		vaults:     provideVaultStore(db),
		lenders:    provideLenderStore(db),
		events:     provideEventStore(db),
		guards:     provideGuardStore(db),
		stakes:     provideStakeStore(db),
		protocols:  provideProtocolStore(db),
		registry:   provideRegistryStore(db),
		properties: providePropertyStore(db),
	}
}

func provideServices(str *stores) *services {
	cfg := provideConfig()

	blockSrv := block.New(cfg)
	registrySrv := registryservice.New(cfg, str.registry, str.events, blockSrv)
	creditSrv := creditservice.New(str.positions, str.vaults, registrySrv)
	interestSrv := interestservice.New(str.positions, str.vaults, str.protocols, creditSrv, blockSrv, str.events)
	vaultSrv := vaultservice.New(str.runner, cfg, str.vaults, str.lenders, str.protocols, str.guards, str.events, blockSrv, str.properties)
	positionSrv := positionservice.New(str.runner, cfg, str.positions, str.protocols, str.guards, str.events, registrySrv, creditSrv, interestSrv, vaultSrv, blockSrv)
	liquidationSrv := liquidationservice.New(str.runner, str.positions, str.protocols, str.stakes, str.guards, str.events, creditSrv, interestSrv, vaultSrv, blockSrv)
	protocolSrv := protocolservice.New(str.runner, cfg, str.protocols, str.stakes, str.events, blockSrv, str.properties)

	return &services{
		block:       blockSrv,
		registry:    registrySrv,
		credit:      creditSrv,
		interest:    interestSrv,
		position:    positionSrv,
		liquidation: liquidationSrv,
		vault:       vaultSrv,
		protocol:    protocolSrv,
	}
}
