package ledgersdk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNodeHealth_InitiallyHealthy(t *testing.T) {
	h := NewNodeHealth()
	assert.True(t, h.IsHealthy(time.Now()))
	assert.False(t, h.RecentlyUsed(time.Now()))
}

func TestNodeHealth_MarkUnhealthy_Quarantines(t *testing.T) {
	h := NewNodeHealth()
	now := time.Now()
	h.MarkUnhealthy(now)
	assert.False(t, h.IsHealthy(now))
	assert.False(t, h.IsHealthy(now.Add(29*time.Minute)))
	assert.True(t, h.IsHealthy(now.Add(31*time.Minute)))
}

func TestNodeHealth_MarkUnhealthy_NeverDecreases(t *testing.T) {
	h := NewNodeHealth()
	now := time.Now()
	h.MarkUnhealthy(now.Add(time.Hour))
	h.MarkUnhealthy(now)
	// the later mark, further in the future, must still hold.
	assert.False(t, h.IsHealthy(now.Add(time.Hour+29*time.Minute)))
	assert.True(t, h.IsHealthy(now.Add(time.Hour+31*time.Minute)))
}

func TestNodeHealth_MarkUsed_RecentlyUsedWindow(t *testing.T) {
	h := NewNodeHealth()
	now := time.Now()
	h.MarkUsed(now)
	assert.True(t, h.RecentlyUsed(now.Add(14*time.Minute)))
	assert.False(t, h.RecentlyUsed(now.Add(16*time.Minute)))
}
