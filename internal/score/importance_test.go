package score

import (
	"testing"
	"time"
)

func TestImportanceBounds(t *testing.T) {
	contents := []string{
		"",
		"x",
		"critical security bug: data loss in production, must fix immediately",
		"I decided to use React because it's faster",
		"func main() {\n\tfor i := 0; i < 10; i++ {\n\t\tprintln(i)\n\t}\n}",
	}
	kinds := []string{"decision", "error", "solution", "preference", "personal", "technical", "unknown"}
	usage := &UsageStats{CreatedAt: time.Now().Add(-48 * time.Hour), AccessCount: 12}

	for _, c := range contents {
		for _, k := range kinds {
			for _, u := range []*UsageStats{nil, usage} {
				got := Importance(c, k, "project context", u)
				if got < 0 || got > 1 {
					t.Errorf("Importance(%q, %q) = %v, out of [0,1]", c, k, got)
				}
			}
		}
	}
}

func TestImportanceDecisionKeywordBonus(t *testing.T) {
	got := Importance("I decided to use React because it's faster", "decision", "", nil)
	if got <= 0.5 {
		t.Errorf("decision importance = %v, want > 0.5", got)
	}
}

func TestImportanceKindOrdering(t *testing.T) {
	content := "the service uses a message queue for ingestion"
	decision := Importance(content, "decision", "", nil)
	personal := Importance(content, "personal", "", nil)
	if decision <= personal {
		t.Errorf("decision %v should outrank personal %v for identical content", decision, personal)
	}
}

func TestImportanceContextRelevance(t *testing.T) {
	content := "switch the storage layer to sqlite"
	relevant := Importance(content, "technical", "storage sqlite migration", nil)
	irrelevant := Importance(content, "technical", "frontend css layout", nil)
	if relevant <= irrelevant {
		t.Errorf("context-relevant %v should outrank irrelevant %v", relevant, irrelevant)
	}
}

func TestImportanceUsageRecency(t *testing.T) {
	content := "prefer table-driven tests"
	fresh := Importance(content, "preference", "", &UsageStats{CreatedAt: time.Now()})
	stale := Importance(content, "preference", "", &UsageStats{CreatedAt: time.Now().Add(-90 * 24 * time.Hour)})
	if fresh <= stale {
		t.Errorf("fresh %v should outrank stale %v", fresh, stale)
	}
}

func TestImportanceMissingTimestampNeutral(t *testing.T) {
	content := "prefer table-driven tests"
	neutral := Importance(content, "preference", "", &UsageStats{})
	if neutral < 0 || neutral > 1 {
		t.Errorf("neutral-recency importance out of bounds: %v", neutral)
	}
	// A zero timestamp scores the neutral 0.5, which beats a very stale one.
	stale := Importance(content, "preference", "", &UsageStats{CreatedAt: time.Now().Add(-365 * 24 * time.Hour)})
	if neutral <= stale {
		t.Errorf("neutral %v should outrank very stale %v", neutral, stale)
	}
}

func TestUpdateOnUsageDecayMonotonic(t *testing.T) {
	old := 0.8
	days := []float64{0, 1, 7, 30, 90, 365}
	prev := 1.1
	for _, d := range days {
		got := UpdateOnUsage(old, 0, d)
		if got > prev {
			t.Errorf("UpdateOnUsage not monotonic: %v days → %v, previous %v", d, got, prev)
		}
		if got < 0 || got > 1 {
			t.Errorf("UpdateOnUsage(%v days) = %v, out of bounds", d, got)
		}
		prev = got
	}
}

func TestUpdateOnUsageFrequencyBoost(t *testing.T) {
	idle := UpdateOnUsage(0.5, 0, 10)
	used := UpdateOnUsage(0.5, 50, 10)
	if used <= idle {
		t.Errorf("frequent access %v should outrank idle %v", used, idle)
	}
}

func TestCriticalityScore(t *testing.T) {
	severe := criticalityScore("panic: runtime error, stack trace follows\ngoroutine 1 [running]:")
	mild := criticalityScore("error: file not found")
	if severe <= mild {
		t.Errorf("severe %v should outrank mild %v", severe, mild)
	}
}

func TestImpactScore(t *testing.T) {
	strong := impactScore("we decided the whole architecture must change immediately")
	weak := impactScore("maybe revisit this someday")
	if strong <= weak {
		t.Errorf("strong decision %v should outrank weak %v", strong, weak)
	}
}
