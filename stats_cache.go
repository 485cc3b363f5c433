package flightpath

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/recovery"
)

const topN = 10
const statChanBufferSize = 1000

func newStatsCacheRegistry(ctx context.Context) map[string]*StatsCache {
	registry := map[string]*StatsCache{
		StatsCacheGeneration: newStatsCache(StatsCacheGeneration),
		StatsCacheExport:     newStatsCache(StatsCacheExport),
	}
	for _, r := range registry {
		go r.consumerLoop(ctx)
		go r.loggerLoop(ctx)
	}

	return registry
}

// Stat represents a count to add to the cache for a particular
// scenario/method/dataset combination.
type Stat struct {
	Count    int
	Scenario string
	Method   string
	Dataset  string
}

// StatsCache accumulates generation and export counts in memory and flushes
// a rolled-up summary to the application log once a minute.
type StatsCache struct {
	mu        sync.Mutex
	cacheName string
	statChan  chan Stat

	calls      int
	total      int
	byScenario map[string]int
	byMethod   map[string]int
	byDataset  map[string]int
}

func newStatsCache(name string) *StatsCache {
	return &StatsCache{
		cacheName:  name,
		statChan:   make(chan Stat, statChanBufferSize),
		byScenario: make(map[string]int),
		byMethod:   make(map[string]int),
		byDataset:  make(map[string]int),
	}
}

func (s *StatsCache) resetCache() {
	s.calls = 0
	s.total = 0
	s.byScenario = make(map[string]int)
	s.byMethod = make(map[string]int)
	s.byDataset = make(map[string]int)
}

func (s *StatsCache) cacheStat(newStat Stat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.total += newStat.Count
	s.byScenario[newStat.Scenario] += newStat.Count
	s.byMethod[newStat.Method] += newStat.Count
	s.byDataset[newStat.Dataset] += newStat.Count
}

func (s *StatsCache) logStats() {
	s.mu.Lock()
	defer s.mu.Unlock()

	grip.Info(message.Fields{
		"message":     fmt.Sprintf("%s stats", s.cacheName),
		"calls":       s.calls,
		"total":       s.total,
		"by_scenario": topNItems(s.byScenario, topN),
		"by_method":   topNItems(s.byMethod, topN),
		"by_dataset":  topNItems(s.byDataset, topN),
	})

	s.resetCache()
}

func (s *StatsCache) consumerLoop(ctx context.Context) {
	defer func() {
		if err := recovery.HandlePanicWithError(recover(), nil, "stats cache consumer"); err != nil {
			grip.Error(message.WrapError(err, message.Fields{
				"message": "panic in stats cache consumer loop",
				"cache":   s.cacheName,
			}))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case nextStat := <-s.statChan:
			s.cacheStat(nextStat)
		}
	}
}

func (s *StatsCache) loggerLoop(ctx context.Context) {
	defer func() {
		if err := recovery.HandlePanicWithError(recover(), nil, "stats cache logger"); err != nil {
			grip.Error(message.WrapError(err, message.Fields{
				"message": "panic in stats cache logger loop",
				"cache":   s.cacheName,
			}))
		}
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.logStats()
		}
	}
}

// AddStat adds a stat to the cache's incoming stats channel.
// Returns an error when the channel is full.
func (s *StatsCache) AddStat(newStat Stat) error {
	select {
	case s.statChan <- newStat:
		return nil
	default:
		return errors.New("stats cache is full")
	}
}

type item struct {
	Identifier string `json:"identifier"`
	Count      int    `json:"count"`
}

func topNItems(fullMap map[string]int, n int) []item {
	items := make([]item, 0, len(fullMap))
	for identifier, count := range fullMap {
		items = append(items, item{Identifier: identifier, Count: count})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Count > items[j].Count })

	if len(items) < n {
		n = len(items)
	}

	return items[:n]
}
