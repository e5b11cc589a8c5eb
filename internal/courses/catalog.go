// Package courses caches the course dropdown content fetched from the backend.
package courses

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mdouchement/udeshare/internal/model"
	"github.com/sirupsen/logrus"
)

// DefaultTTL is the freshness window of a fetched course list.
const DefaultTTL = 30 * time.Second

// slot is the only key of the cache, the catalog is not keyed by user.
const slot = "courses"

type (
	// A Fetcher retrieves the course list from the backend.
	Fetcher interface {
		Courses(ctx context.Context, token string) ([]model.Course, error)
	}

	// A Catalog is a single-slot TTL cache in front of a Fetcher.
	// Expiry is checked on read so no janitor goroutine is needed.
	Catalog struct {
		fetcher Fetcher
		ttl     time.Duration
		cache   *lru.Cache[string, entry]
		log     logrus.FieldLogger
		now     func() time.Time
	}

	// An Option configures a Catalog.
	Option func(*Catalog)

	entry struct {
		courses   []model.Course
		fetchedAt time.Time
	}
)

// WithClock sets the clock used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// New returns a new Catalog.
func New(fetcher Fetcher, ttl time.Duration, log logrus.FieldLogger, opts ...Option) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	cache, _ := lru.New[string, entry](1) // Only fails on a non-positive size.
	c := &Catalog{
		fetcher: fetcher,
		ttl:     ttl,
		cache:   cache,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Courses returns the cached list when it is still fresh, unless force is set.
// A forced refresh drops the cached list before fetching, even if the fetch fails.
// Failed fetches are never cached.
func (c *Catalog) Courses(ctx context.Context, token string, force bool) ([]model.Course, error) {
	if force {
		c.cache.Remove(slot)
	} else if e, ok := c.cache.Get(slot); ok {
		if c.now().Sub(e.fetchedAt) < c.ttl {
			c.log.WithField("count", len(e.courses)).Debug("courses served from cache")
			return e.courses, nil
		}
		c.cache.Remove(slot)
	}

	courses, err := c.fetcher.Courses(ctx, token)
	if err != nil {
		return nil, err
	}

	c.cache.Add(slot, entry{courses: courses, fetchedAt: c.now()})
	c.log.WithField("count", len(courses)).Debug("courses fetched")
	return courses, nil
}

// Purge empties the cache.
func (c *Catalog) Purge() {
	c.cache.Purge()
}
