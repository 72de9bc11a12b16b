package metrics

import (
	"sync"
	"time"

	"image-tagger/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current statistics
type Stats struct {
	TotalImages    int
	TaggedImages   int
	VocabularySize int
	PendingSaves   int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
	done          chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection and waits for the loop to exit.
// It must only be called after Start.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	<-c.done
}

func (c *Collector) collectLoop() {
	defer close(c.done)

	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	ImagesTotal.Set(float64(stats.TotalImages))
	TaggedImagesTotal.Set(float64(stats.TaggedImages))
	VocabularySize.Set(float64(stats.VocabularySize))
	SaveQueueDepth.Set(float64(stats.PendingSaves))

	logging.Debug("Metrics collected: images=%d, tagged=%d, vocabulary=%d, pending=%d",
		stats.TotalImages, stats.TaggedImages, stats.VocabularySize, stats.PendingSaves)
}
