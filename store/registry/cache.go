package registry

import (
	"context"
	"fmt"
	"time"

	"lever/core"

	"github.com/bluele/gcache"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Cache read-through cache in front of the registry store. Prices carry
// their own UpdatedAt, so the freshness contract is still judged on the
// row, not on the cache entry.
func Cache(store core.IRegistryStore, exp time.Duration) core.IRegistryStore {
	return &cacheRegistryStore{
		IRegistryStore: store,
		cache:          gcache.New(1024).LRU().Build(),
		sf:             &singleflight.Group{},
		exp:            exp,
	}
}

type cacheRegistryStore struct {
	core.IRegistryStore
	cache gcache.Cache
	sf    *singleflight.Group
	exp   time.Duration
}

func (s *cacheRegistryStore) assetKey(assetID string) string {
	return fmt.Sprintf("registry:asset:%s", assetID)
}

func (s *cacheRegistryStore) priceKey(assetID string) string {
	return fmt.Sprintf("registry:price:%s", assetID)
}

func (s *cacheRegistryStore) SaveAsset(ctx context.Context, asset *core.AssetConfig) error {
	if err := s.IRegistryStore.SaveAsset(ctx, asset); err != nil {
		return err
	}
	s.cache.Remove(s.assetKey(asset.AssetID))
	return nil
}

func (s *cacheRegistryStore) FindAsset(ctx context.Context, assetID string) (*core.AssetConfig, error) {
	key := s.assetKey(assetID)
	if v, err := s.cache.Get(key); err == nil {
		return v.(*core.AssetConfig), nil
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		asset, err := s.IRegistryStore.FindAsset(ctx, assetID)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetWithExpire(key, asset, s.exp)
		return asset, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.AssetConfig), nil
}

func (s *cacheRegistryStore) SavePrice(ctx context.Context, assetID string, price decimal.Decimal, at time.Time) error {
	if err := s.IRegistryStore.SavePrice(ctx, assetID, price, at); err != nil {
		return err
	}
	s.cache.Remove(s.priceKey(assetID))
	return nil
}

func (s *cacheRegistryStore) FindPrice(ctx context.Context, assetID string) (*core.Price, error) {
	key := s.priceKey(assetID)
	if v, err := s.cache.Get(key); err == nil {
		return v.(*core.Price), nil
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		price, err := s.IRegistryStore.FindPrice(ctx, assetID)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetWithExpire(key, price, s.exp)
		return price, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Price), nil
}
