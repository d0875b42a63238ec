package engine

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/recallhq/recall/internal/score"
)

// importanceFloor is the lowest value decay may push a memory to; nothing
// fades to zero.
const importanceFloor = 0.05

// StartDecay schedules the background importance-decay sweep on the given
// cron expression and runs one sweep immediately.
func (e *Engine) StartDecay(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if n, err := e.RunDecay(); err != nil {
			log.Printf("engine: decay sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("engine: decay adjusted %d memories", n)
		}
	}); err != nil {
		return fmt.Errorf("schedule decay %q: %w", schedule, err)
	}
	c.Start()
	e.cron = c

	go func() {
		if _, err := e.RunDecay(); err != nil {
			log.Printf("engine: initial decay sweep failed: %v", err)
		}
	}()
	return nil
}

// RunDecay re-scores every active memory from its usage signals and writes
// back the ones that changed. Returns how many were adjusted. Serializes
// with the write critical section.
func (e *Engine) RunDecay() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active, err := e.db.ListActive()
	if err != nil {
		return 0, fmt.Errorf("decay list: %w", err)
	}

	now := time.Now()
	adjusted := 0
	for _, m := range active {
		lastMillis := m.CreatedAt
		if m.LastAccessed != nil {
			lastMillis = *m.LastAccessed
		}
		days := now.Sub(time.UnixMilli(lastMillis)).Hours() / 24

		decayed := score.UpdateOnUsage(m.Importance, m.AccessCount, days)
		if decayed < importanceFloor {
			decayed = importanceFloor
		}
		if math.Abs(decayed-m.Importance) < 0.001 {
			continue
		}

		if err := e.db.SetImportance(m.ID, decayed); err != nil {
			return adjusted, fmt.Errorf("decay %s: %w", m.ID, err)
		}
		e.graph.UpdateNode(m.ID, m.Content, decayed)
		adjusted++
	}

	if adjusted > 0 {
		e.searchCache.Flush()
	}
	decayRunsTotal.Inc()
	return adjusted, nil
}
