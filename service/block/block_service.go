package block

import (
	"context"
	"time"

	"lever/core"
	"lever/internal/lever"
)

type blockService struct {
	genesis         int64
	secondsPerBlock int64
}

// New new block service
func New(cfg *core.Config) core.IBlockService {
	secondsPerBlock := cfg.App.SecondsPerBlock
	if secondsPerBlock <= 0 {
		secondsPerBlock = lever.SecondsPerBlock
	}

	return &blockService{
		genesis:         cfg.App.Genesis,
		secondsPerBlock: secondsPerBlock,
	}
}

func (s *blockService) CurrentBlock(ctx context.Context) (int64, error) {
	return lever.CurrentBlock(time.Now(), s.secondsPerBlock, s.genesis)
}
