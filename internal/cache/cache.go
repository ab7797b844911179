package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
)

// Purpose selects which signature family a cache key belongs to.
type Purpose string

const (
	PurposeCreation  Purpose = "creation"
	PurposeExecution Purpose = "execution"
)

// Purposes lists every signature family.
var Purposes = []Purpose{PurposeCreation, PurposeExecution}

// Kind maps a purpose to the record kind it stores.
func (p Purpose) Kind() model.Kind {
	if p == PurposeExecution {
		return model.KindExecution
	}
	return model.KindCreation
}

// PurposeFor maps a record kind to its purpose; unclassified records have none.
func PurposeFor(k model.Kind) (Purpose, bool) {
	switch k {
	case model.KindCreation:
		return PurposeCreation, true
	case model.KindExecution:
		return PurposeExecution, true
	}
	return "", false
}

func (p Purpose) prefix() string {
	return "capsule_" + string(p) + "_tx_"
}

// Keys are built from base58 wallet addresses, which never contain '_',
// so "<prefix><wallet>_" never matches a longer wallet.
func latestKey(wallet string, p Purpose) string {
	return p.prefix() + wallet
}

func historyPrefix(wallet string, p Purpose) string {
	return p.prefix() + wallet + "_"
}

func intentPrefix(wallet string) string {
	return "capsule_intent_" + wallet + "_"
}

func executedKey(wallet string) string {
	return "executed_capsules_" + wallet
}

// Intent is raw intent text saved when a capsule was created.
type Intent struct {
	SavedAt time.Time `json:"savedAt"`
	Text    string    `json:"text"`
}

// ExecutedCapsule remembers a capsule observed after execution.
type ExecutedCapsule struct {
	Capsule     string `json:"capsule"`
	ExecutedAt  int64  `json:"executedAt"`
	ExecutionTx string `json:"executionTx,omitempty"`
	IntentData  string `json:"intentData,omitempty"`
}

// Cache is the typed wallet x purpose view over a Store.
type Cache struct {
	store Store
}

// New wraps store.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Latest returns the latest signature slot for wallet and purpose.
func (c *Cache) Latest(ctx context.Context, wallet string, p Purpose) (string, bool, error) {
	return c.store.Get(ctx, latestKey(wallet, p))
}

// SetLatest overwrites the latest slot and records sig in the history.
func (c *Cache) SetLatest(ctx context.Context, wallet string, p Purpose, sig string) error {
	if err := c.store.Set(ctx, latestKey(wallet, p), sig); err != nil {
		return err
	}
	return c.Remember(ctx, wallet, p, sig)
}

// Remember adds sig to the historical set without touching the latest slot.
func (c *Cache) Remember(ctx context.Context, wallet string, p Purpose, sig string) error {
	return c.store.Set(ctx, historyPrefix(wallet, p)+sig, sig)
}

// Signatures returns the latest slot and every historical signature, deduplicated and sorted.
func (c *Cache) Signatures(ctx context.Context, wallet string, p Purpose) ([]string, error) {
	seen := make(map[string]struct{})
	latest, ok, err := c.Latest(ctx, wallet, p)
	if err != nil {
		return nil, err
	}
	if ok && latest != "" {
		seen[latest] = struct{}{}
	}

	history, err := c.store.List(ctx, historyPrefix(wallet, p))
	if err != nil {
		return nil, err
	}
	for _, sig := range history {
		if sig != "" {
			seen[sig] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for sig := range seen {
		out = append(out, sig)
	}
	sort.Strings(out)
	return out, nil
}

// Forget removes sig from both purposes, clearing a latest slot that holds it.
func (c *Cache) Forget(ctx context.Context, wallet, sig string) error {
	for _, p := range Purposes {
		if err := c.store.Delete(ctx, historyPrefix(wallet, p)+sig); err != nil {
			return err
		}
		latest, ok, err := c.Latest(ctx, wallet, p)
		if err != nil {
			return err
		}
		if ok && latest == sig {
			if err := c.store.Delete(ctx, latestKey(wallet, p)); err != nil {
				return err
			}
		}
	}
	return nil
}

// SaveIntent stores raw intent text under the save time in milliseconds.
func (c *Cache) SaveIntent(ctx context.Context, wallet string, at time.Time, text string) error {
	return c.store.Set(ctx, intentPrefix(wallet)+strconv.FormatInt(at.UnixMilli(), 10), text)
}

// Intents returns every saved intent for wallet, oldest first.
// Keys whose suffix is not a millisecond timestamp keep a zero SavedAt.
func (c *Cache) Intents(ctx context.Context, wallet string) ([]Intent, error) {
	prefix := intentPrefix(wallet)
	entries, err := c.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]Intent, 0, len(entries))
	for k, v := range entries {
		in := Intent{Text: v}
		if ms, err := strconv.ParseInt(strings.TrimPrefix(k, prefix), 10, 64); err == nil {
			in.SavedAt = time.UnixMilli(ms).UTC()
		}
		out = append(out, in)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].Text < out[j].Text
		}
		return out[i].SavedAt.Before(out[j].SavedAt)
	})
	return out, nil
}

// ExecutedCapsules returns the remembered executed capsules for wallet.
func (c *Cache) ExecutedCapsules(ctx context.Context, wallet string) ([]ExecutedCapsule, error) {
	raw, ok, err := c.store.Get(ctx, executedKey(wallet))
	if err != nil || !ok {
		return nil, err
	}
	var list []ExecutedCapsule
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to decode executed capsules for %s: %w", wallet, err)
	}
	return list, nil
}

// AddExecutedCapsule appends ec unless an entry with the same execution
// transaction or execution time is already present. It reports whether ec was added.
func (c *Cache) AddExecutedCapsule(ctx context.Context, wallet string, ec ExecutedCapsule) (bool, error) {
	list, err := c.ExecutedCapsules(ctx, wallet)
	if err != nil {
		return false, err
	}
	for _, existing := range list {
		if existing.ExecutedAt == ec.ExecutedAt {
			return false, nil
		}
		if ec.ExecutionTx != "" && existing.ExecutionTx == ec.ExecutionTx {
			return false, nil
		}
	}
	list = append(list, ec)
	raw, err := json.Marshal(list)
	if err != nil {
		return false, fmt.Errorf("failed to encode executed capsules: %w", err)
	}
	if err := c.store.Set(ctx, executedKey(wallet), string(raw)); err != nil {
		return false, err
	}
	return true, nil
}
