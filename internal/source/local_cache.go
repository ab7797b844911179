package source

import (
	"context"

	"github.com/Joseph-hackathon/Lucid-solana/internal/cache"
	"github.com/Joseph-hackathon/Lucid-solana/internal/errors"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
)

// LocalCache reports the signatures remembered in the local cache.
// Records carry the kind of the key they were stored under and no time.
type LocalCache struct {
	cache *cache.Cache
}

// NewLocalCache creates a LocalCache adapter over c.
func NewLocalCache(c *cache.Cache) *LocalCache {
	return &LocalCache{cache: c}
}

func (a *LocalCache) Name() model.Source {
	return model.SourceLocalCache
}

func (a *LocalCache) FetchForAccount(ctx context.Context, id Identity) ([]model.TransactionRecord, error) {
	var records []model.TransactionRecord
	for _, p := range cache.Purposes {
		sigs, err := a.cache.Signatures(ctx, id.Wallet, p)
		if err != nil {
			return nil, errors.NewSourceUnavailable(string(a.Name()), err)
		}
		for _, sig := range sigs {
			records = append(records, model.TransactionRecord{
				Signature: sig,
				Kind:      p.Kind(),
				Succeeded: true,
				Source:    model.SourceLocalCache,
			})
		}
	}
	return records, nil
}
