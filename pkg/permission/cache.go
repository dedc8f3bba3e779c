package permission

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

// Source is the backing store of the cache.
type Source interface {
	// LoadRules returns every configured rule.
	LoadRules(ctx context.Context) ([]Rule, error)

	// SaveRules upserts rules in one transaction.
	SaveRules(ctx context.Context, rules []Rule) error
}

// Checker answers capability questions for a role.
type Checker interface {
	Can(ctx context.Context, r role.Role, resourceKey string, action role.Action) bool
}

// Ensure Cache implements Checker
var _ Checker = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithTTL makes the snapshot expire after ttl so that edits made outside
// this process are picked up. Zero keeps the snapshot until invalidated.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// Cache is a read-through snapshot of the role_permissions table.
type Cache struct {
	source Source
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time

	mu         sync.RWMutex
	snapshot   map[ruleKey]Rule
	loadedAt   time.Time
	generation uint64

	group  singleflight.Group
	warned sync.Map
}

// NewCache creates a cache over source. A nil logger discards log output.
func NewCache(source Source, logger *zap.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		source: source,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Can reports whether r may perform action on resourceKey. Missing rules and
// load failures both deny.
func (c *Cache) Can(ctx context.Context, r role.Role, resourceKey string, action role.Action) bool {
	rule, ok, err := c.Lookup(ctx, r, resourceKey)
	if err != nil {
		c.logger.Error("permission lookup failed, denying",
			zap.Stringer("role", r),
			zap.String("resource", resourceKey),
			zap.Error(err))
		return false
	}
	if !ok {
		c.warnNotConfigured(r, resourceKey)
		return false
	}
	return rule.Allows(action)
}

// Lookup returns the rule for (r, resourceKey) and whether one is configured.
func (c *Cache) Lookup(ctx context.Context, r role.Role, resourceKey string) (Rule, bool, error) {
	snap, err := c.rules(ctx)
	if err != nil {
		return Rule{}, false, err
	}
	rule, ok := snap[ruleKey{role: r, resource: resourceKey}]
	return rule, ok, nil
}

// Rules returns every cached rule ordered by role then resource key.
func (c *Cache) Rules(ctx context.Context) ([]Rule, error) {
	snap, err := c.rules(ctx)
	if err != nil {
		return nil, err
	}
	rules := make([]Rule, 0, len(snap))
	for _, rule := range snap {
		rules = append(rules, rule)
	}
	sortRules(rules)
	return rules, nil
}

// RulesFor returns the rules configured for a single role.
func (c *Cache) RulesFor(ctx context.Context, r role.Role) ([]Rule, error) {
	all, err := c.Rules(ctx)
	if err != nil {
		return nil, err
	}
	rules := make([]Rule, 0, len(all))
	for _, rule := range all {
		if rule.Role == r {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// Update writes rules through to the source and drops the snapshot while
// holding the write lock, so no reader can observe the old rules once
// Update has returned.
func (c *Cache) Update(ctx context.Context, rules []Rule) error {
	if err := ValidateBatch(rules); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.source.SaveRules(ctx, rules); err != nil {
		return err
	}
	c.invalidateLocked()
	return nil
}

// Invalidate drops the snapshot. The next lookup reloads from the source.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Cache) invalidateLocked() {
	c.snapshot = nil
	c.generation++
	c.warned.Range(func(k, _ any) bool {
		c.warned.Delete(k)
		return true
	})
}

func (c *Cache) rules(ctx context.Context) (map[ruleKey]Rule, error) {
	c.mu.RLock()
	snap, gen := c.snapshot, c.generation
	fresh := snap != nil && (c.ttl <= 0 || c.now().Sub(c.loadedAt) < c.ttl)
	c.mu.RUnlock()
	if fresh {
		return snap, nil
	}

	// Loads are shared per generation. A load that overlaps an Update still
	// answers its own callers but is not installed.
	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		rules, err := c.source.LoadRules(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		loaded := make(map[ruleKey]Rule, len(rules))
		for _, rule := range rules {
			loaded[ruleKey{role: rule.Role, resource: rule.ResourceKey}] = rule
		}

		c.mu.Lock()
		if c.generation == gen {
			c.snapshot = loaded
			c.loadedAt = c.now()
		}
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[ruleKey]Rule), nil
}

func (c *Cache) warnNotConfigured(r role.Role, resourceKey string) {
	k := ruleKey{role: r, resource: resourceKey}
	if _, seen := c.warned.LoadOrStore(k, true); seen {
		return
	}
	c.logger.Warn("permission not configured, denying",
		zap.Stringer("role", r),
		zap.String("resource", resourceKey))
}
