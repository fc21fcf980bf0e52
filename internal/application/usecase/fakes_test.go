package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/internal/domain/entity"
	"github.com/dreschagin/activity-globe/internal/domain/service"
	"github.com/dreschagin/activity-globe/internal/domain/valueobject"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

const (
	testToken         = "test-access-token"
	canonicalPolyline = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
)

type listCall struct {
	token   string
	page    int
	perPage int
}

type fakeProvider struct {
	mu       sync.Mutex
	pages    map[int][]*entity.Activity
	dropped  map[int]int
	byID     map[int64]*entity.Activity
	err      error
	errPage  int
	calls    []listCall
	getCalls int
}

// dropped[page] is the number of malformed items the platform sent on that page
func (p *fakeProvider) ListActivities(_ context.Context, token string, page, perPage int) ([]*entity.Activity, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, listCall{token: token, page: page, perPage: perPage})
	if p.err != nil && (p.errPage == 0 || p.errPage == page) {
		return nil, 0, p.err
	}
	return p.pages[page], len(p.pages[page]) + p.dropped[page], nil
}

func (p *fakeProvider) GetActivity(_ context.Context, _ string, id int64) (*entity.Activity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getCalls++
	if p.err != nil {
		return nil, p.err
	}
	activity, ok := p.byID[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return activity, nil
}

type memoryCache struct {
	mu     sync.Mutex
	items     map[string][]byte
	getErr    error
	deleteErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	data, ok := c.items[key]
	if !ok {
		return port.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = data
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	for key := range c.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.items, key)
		}
	}
	return nil
}

func (c *memoryCache) Close() error {
	return nil
}

type publishedEvent struct {
	subject string
	event   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, subject string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{subject: subject, event: event})
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

type countingMetrics struct {
	hits, misses, fetched, built int
}

func (m *countingMetrics) CacheHit()               { m.hits++ }
func (m *countingMetrics) CacheMiss()              { m.misses++ }
func (m *countingMetrics) ActivitiesFetched(n int) { m.fetched += n }
func (m *countingMetrics) TracksBuilt(n int)       { m.built += n }

func newActivity(t *testing.T, id int64, activityType valueobject.ActivityType, summary string) *entity.Activity {
	t.Helper()
	activity, err := entity.NewActivity(
		id,
		fmt.Sprintf("Activity %d", id),
		activityType,
		time.Date(2017, 5, 20, 8, 0, 0, 0, time.UTC),
		12000,
		140,
		"",
		summary,
	)
	if err != nil {
		t.Fatalf("NewActivity() error = %v", err)
	}
	return activity
}

func newTrackBuilder() *service.TrackBuilder {
	return service.NewTrackBuilder(service.NewPolylineDecoder(), 5, 0.5, 0.95)
}

func testLogger() *logger.Logger {
	return logger.New("error")
}
