package counter

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const authOutcomesKey = "auth:counters:outcomes"

// Outcome names recorded next to the reconciliation outcomes
const (
	OutcomeFailed = "failed"
	OutcomeLocal  = "local"
)

// Entry is one provider/outcome counter.
type Entry struct {
	Provider string `json:"provider"`
	Outcome  string `json:"outcome"`
	Count    int64  `json:"count"`
}

// AuthOutcomes counts sign in results per provider in a redis hash
type AuthOutcomes struct {
	client *redis.Client
}

func NewAuthOutcomes(client *redis.Client) *AuthOutcomes {
	return &AuthOutcomes{client: client}
}

// Record increments the counter for provider and outcome
func (a *AuthOutcomes) Record(ctx context.Context, provider, outcome string) error {
	return a.client.HIncrBy(ctx, authOutcomesKey, field(provider, outcome), 1).Err()
}

// Snapshot returns all counters ordered by provider and outcome
func (a *AuthOutcomes) Snapshot(ctx context.Context) ([]Entry, error) {
	data, err := a.client.HGetAll(ctx, authOutcomesKey).Result()
	if err != nil {
		return nil, err
	}
	return parseSnapshot(data), nil
}

func field(provider, outcome string) string {
	return provider + ":" + outcome
}

// parseSnapshot turns the raw hash into entries, skipping malformed fields.
func parseSnapshot(data map[string]string) []Entry {
	entries := make([]Entry, 0, len(data))
	for k, v := range data {
		provider, outcome, ok := strings.Cut(k, ":")
		if !ok || provider == "" || outcome == "" {
			continue
		}
		count, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Provider: provider, Outcome: outcome, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Provider != entries[j].Provider {
			return entries[i].Provider < entries[j].Provider
		}
		return entries[i].Outcome < entries[j].Outcome
	})
	return entries
}
