package lever

import (
	"errors"
	"time"
)

// CurrentBlock discrete time-step since genesis
func CurrentBlock(now time.Time, secondsPerBlock, genesis int64) (int64, error) {
	if secondsPerBlock <= 0 {
		return 0, errors.New("secondsPerBlock should not be less than or equal zero")
	}

	seconds := now.UTC().Unix() - genesis
	if seconds <= 0 {
		return 0, errors.New("invalid blocks")
	}

	return seconds / secondsPerBlock, nil
}
