package flags

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Flag names resolved per team.
const (
	FlagAdvancedDataroom = "advanced_dataroom"
	FlagQA               = "qa_enabled"
	FlagESignature       = "e_signature"
	FlagYearInReview     = "year_in_review"
	FlagBankLinking      = "bank_linking"
)

// DefaultEnabledFlag is the single flag that defaults to true when no
// allow-list source is reachable. Deliberate asymmetry; every other
// flag defaults to false.
const DefaultEnabledFlag = FlagQA

// AllFlags lists every flag the resolver knows about.
var AllFlags = []string{
	FlagAdvancedDataroom,
	FlagQA,
	FlagESignature,
	FlagYearInReview,
	FlagBankLinking,
}

// Flags maps flag name to its resolved value for a team.
type Flags map[string]bool

// Source provides per-flag team allow-lists from an external system.
type Source interface {
	AllowLists(ctx context.Context) (map[string][]string, error)
}

const allowListCacheKey = "allow_lists"

// Resolver computes per-team flag sets. Results of the source fetch are
// cached briefly so a burst of requests does not hammer the source.
type Resolver struct {
	source Source
	cache  *gocache.Cache
	logger *zap.Logger
}

// NewResolver builds a resolver. source may be nil when no external
// configuration exists; resolution then returns the default set.
func NewResolver(source Source, cacheTTL time.Duration, logger *zap.Logger) *Resolver {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Resolver{
		source: source,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		logger: logger,
	}
}

// GetFeatureFlags resolves the flag set for a team. Default-closed:
// a flag is true only when the source's allow-list for it contains the
// team. Source absence yields the default set; source failure is logged
// and flags stay false; an empty team ID never reaches the source.
func (r *Resolver) GetFeatureFlags(ctx context.Context, teamID string) Flags {
	if r.source == nil {
		return defaults()
	}
	if teamID == "" {
		return allOff()
	}

	lists, err := r.allowLists(ctx)
	if err != nil {
		r.logger.Warn("feature flag resolution failed", zap.Error(err))
		return allOff()
	}

	result := allOff()
	for _, flag := range AllFlags {
		for _, allowed := range lists[flag] {
			if allowed == teamID {
				result[flag] = true
				break
			}
		}
	}
	return result
}

func (r *Resolver) allowLists(ctx context.Context) (map[string][]string, error) {
	if cached, ok := r.cache.Get(allowListCacheKey); ok {
		return cached.(map[string][]string), nil
	}
	lists, err := r.source.AllowLists(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(allowListCacheKey, lists)
	return lists, nil
}

func allOff() Flags {
	result := make(Flags, len(AllFlags))
	for _, flag := range AllFlags {
		result[flag] = false
	}
	return result
}

func defaults() Flags {
	result := allOff()
	result[DefaultEnabledFlag] = true
	return result
}
