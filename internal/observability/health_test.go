package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHealthCheckerAggregation tests status roll-up across components
func TestHealthCheckerAggregation(t *testing.T) {
	hc := NewHealthChecker()

	hc.Register("redis", func(ctx context.Context) *HealthCheck {
		return &HealthCheck{Name: "redis", Status: HealthStatusHealthy}
	})
	hc.Register("database", func(ctx context.Context) *HealthCheck {
		return &HealthCheck{Name: "database", Status: HealthStatusHealthy}
	})

	resp := hc.GetHealthResponse(context.Background())
	assert.Equal(t, HealthStatusHealthy, resp.Status)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, "sql-copilot", resp.Metadata["service"])
}

// TestHealthCheckerUnhealthyDominates tests that one failing dependency
// marks the whole service unhealthy
func TestHealthCheckerUnhealthyDominates(t *testing.T) {
	hc := NewHealthChecker()

	hc.Register("redis", func(ctx context.Context) *HealthCheck {
		return &HealthCheck{Name: "redis", Status: HealthStatusHealthy}
	})
	hc.Register("database", func(ctx context.Context) *HealthCheck {
		return &HealthCheck{Name: "database", Status: HealthStatusUnhealthy}
	})

	resp := hc.GetHealthResponse(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, resp.Status)
}

// TestHealthCheckerCaching tests that results inside the TTL are served
// from cache without re-running the check
func TestHealthCheckerCaching(t *testing.T) {
	hc := NewHealthChecker()

	calls := 0
	hc.Register("redis", func(ctx context.Context) *HealthCheck {
		calls++
		return &HealthCheck{Name: "redis", Status: HealthStatusHealthy}
	})

	hc.Check(context.Background())
	hc.Check(context.Background())

	assert.Equal(t, 1, calls)
}

// TestPingHealthCheck tests the ping adapter in both directions
func TestPingHealthCheck(t *testing.T) {
	healthy := PingHealthCheck("redis", func(ctx context.Context) error {
		return nil
	})(context.Background())
	require.NotNil(t, healthy)
	assert.Equal(t, HealthStatusHealthy, healthy.Status)
	assert.Contains(t, healthy.Message, "redis reachable")

	failing := PingHealthCheck("database", func(ctx context.Context) error {
		return fmt.Errorf("connection refused")
	})(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, failing.Status)
	assert.Contains(t, failing.Message, "connection refused")
}

// TestPingHealthCheckTimeout tests that a hanging ping is cut off
func TestPingHealthCheckTimeout(t *testing.T) {
	check := PingHealthCheck("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Second):
			return nil
		}
	})

	start := time.Now()
	result := check(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Less(t, time.Since(start), 5*time.Second)
}
