package health

import (
	"context"
	"testing"
)

func TestMemoryCheckerDefaults(t *testing.T) {
	checker := NewMemoryChecker(MemoryCheckerConfig{})
	if checker.config.WarningThreshold != 0.8 {
		t.Errorf("WarningThreshold = %v", checker.config.WarningThreshold)
	}
	if checker.config.CriticalThreshold != 0.95 {
		t.Errorf("CriticalThreshold = %v", checker.config.CriticalThreshold)
	}
}

func TestMemoryCheckerThresholdOrdering(t *testing.T) {
	// Critical below warning gets bumped above it.
	checker := NewMemoryChecker(MemoryCheckerConfig{
		WarningThreshold:  0.9,
		CriticalThreshold: 0.5,
	})
	if checker.config.CriticalThreshold <= checker.config.WarningThreshold {
		t.Errorf("critical %v should exceed warning %v",
			checker.config.CriticalThreshold, checker.config.WarningThreshold)
	}
}

func TestMemoryCheckerCheck(t *testing.T) {
	checker := NewMemoryChecker(MemoryCheckerConfig{})
	if checker.Name() != "memory" {
		t.Errorf("Name() = %q", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status == StatusUnhealthy {
		t.Errorf("fresh process should not be memory-critical: %+v", result)
	}
	if result.Details["goroutines"] == nil {
		t.Error("missing goroutines detail")
	}
}

func TestMemoryCheckerCancelled(t *testing.T) {
	checker := NewMemoryChecker(MemoryCheckerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if result := checker.Check(ctx); result.Status != StatusUnhealthy {
		t.Errorf("cancelled check status = %v", result.Status)
	}
}
