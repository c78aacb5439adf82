package stats

import (
	"sync/atomic"
	"time"

	"github.com/shehryarbajwa/tvsnap/pkg/models"
)

// Collector tracks request volume since process start. Increments happen on
// the request path; reads may happen concurrently from the tool and HTTP
// surfaces.
type Collector struct {
	start    time.Time
	requests atomic.Int64
}

// NewCollector creates a collector anchored at the current time.
func NewCollector() *Collector {
	return &Collector{start: time.Now()}
}

// RecordRequest counts one chart request.
func (c *Collector) RecordRequest() {
	c.requests.Add(1)
}

// Snapshot returns the current counters.
func (c *Collector) Snapshot() models.PerformanceStats {
	return models.PerformanceStats{
		Requests:      c.requests.Load(),
		UptimeSeconds: time.Since(c.start).Seconds(),
	}
}
