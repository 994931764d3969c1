package protocol

import (
	"context"

	"lever/core"
	"lever/pkg/id"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/shopspring/decimal"
)

const configVersionKey = "protocol_config_version"

type protocolService struct {
	runner        core.TxRunner
	config        *core.Config
	protocolStore core.IProtocolStore
	stakeStore    core.IStakeStore
	eventStore    core.IEventStore
	blockSrv      core.IBlockService
	properties    property.Store
}

// New new protocol service
func New(
	runner core.TxRunner,
	config *core.Config,
	protocolStore core.IProtocolStore,
	stakeStore core.IStakeStore,
	eventStore core.IEventStore,
	blockSrv core.IBlockService,
	properties property.Store,
) core.IProtocolService {
	return &protocolService{
		runner:        runner,
		config:        config,
		protocolStore: protocolStore,
		stakeStore:    stakeStore,
		eventStore:    eventStore,
		blockSrv:      blockSrv,
		properties:    properties,
	}
}

func (s *protocolService) LoadProtocolConfig(ctx context.Context, caller string, config *core.ProtocolConfig) error {
	log := logger.FromContext(ctx).WithField("service", "protocol")

	if !s.config.IsAdmin(caller) {
		return core.ErrOperationForbidden
	}

	if err := config.Validate(); err != nil {
		return err
	}

	return s.runner.Tx(ctx, func(ctx context.Context) error {
		current, err := s.protocolStore.Find(ctx)
		if err != nil {
			return err
		}

		if current != nil {
			config.ID = current.ID
			config.Version = current.Version
		}

		if err := s.protocolStore.Save(ctx, config); err != nil {
			return err
		}

		if err := s.properties.Save(ctx, configVersionKey, config.Version); err != nil {
			return err
		}

		log.WithField("version", config.Version).Infoln("protocol config installed")

		block, _ := s.blockSrv.CurrentBlock(ctx)
		return s.eventStore.Create(ctx, &core.Event{
			TraceID: id.GenTraceID(),
			Type:    core.EventTypeConfigUpdated,
			UserID:  caller,
			Block:   block,
		})
	})
}

func (s *protocolService) Current(ctx context.Context) (*core.ProtocolConfig, error) {
	return s.protocolStore.Find(ctx)
}

func (s *protocolService) SetStake(ctx context.Context, caller, userID string, amount decimal.Decimal) error {
	if !s.config.IsAdmin(caller) {
		return core.ErrOperationForbidden
	}

	if userID == "" {
		return core.ErrZeroAddress
	}

	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}

	return s.runner.Tx(ctx, func(ctx context.Context) error {
		stake, err := s.stakeStore.Find(ctx, userID)
		if err != nil {
			return err
		}

		stake.Amount = amount
		if err := s.stakeStore.Save(ctx, stake); err != nil {
			return err
		}

		block, _ := s.blockSrv.CurrentBlock(ctx)
		return s.eventStore.Create(ctx, &core.Event{
			TraceID: id.GenTraceID(),
			Type:    core.EventTypeStakeUpdated,
			UserID:  userID,
			Amount:  amount,
			Block:   block,
		})
	})
}
