package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityMonitor(t *testing.T) {
	m := NewSecurityEventMonitor()
	clock := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ip := "127.0.0.1"

	t.Run("Alert after threshold", func(t *testing.T) {
		for i := 0; i < failedLoginThreshold-1; i++ {
			m.TrackFailedLogin(ip)
		}
		assert.Empty(t, m.GetRecentAlerts())

		m.TrackFailedLogin(ip)
		alerts := m.GetRecentAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, ip, alerts[0].IP)
		assert.Contains(t, alerts[0].Reason, "Multiple failed logins")
	})

	t.Run("Duplicate alert is rate limited", func(t *testing.T) {
		for i := 0; i < failedLoginThreshold; i++ {
			m.TrackFailedLogin(ip)
		}
		assert.Len(t, m.GetRecentAlerts(), 1)
	})

	t.Run("Old attempts leave the window", func(t *testing.T) {
		clock = clock.Add(alertCooldown + time.Minute)
		m.TrackFailedLogin(ip)
		assert.Len(t, m.GetRecentAlerts(), 1)
		assert.Len(t, m.failedLogins[ip], 1)
	})
}
