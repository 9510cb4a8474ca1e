package services

import (
	"sync"
	"time"

	"calificaciones_app_go/logging"
)

const (
	failedLoginWindow    = 10 * time.Minute
	failedLoginThreshold = 5
	alertCooldown        = time.Hour
	maxAlerts            = 100
)

// SecurityEventMonitor counts failed logins per IP and raises an alert when
// an IP crosses the threshold inside the window
type SecurityEventMonitor struct {
	mu           sync.Mutex
	now          func() time.Time
	failedLogins map[string][]time.Time // IP -> failure timestamps inside the window
	alertedIPs   map[string]time.Time   // IP -> last alert time
	alerts       []SecurityAlert        // newest first
}

// SecurityAlert represents a triggered security alert
type SecurityAlert struct {
	Timestamp time.Time
	IP        string
	Reason    string
	Level     string // "WARNING", "CRITICAL"
}

// Monitor is the process-wide monitor used by the login handler
var Monitor = NewSecurityEventMonitor()

// NewSecurityEventMonitor returns an empty monitor
func NewSecurityEventMonitor() *SecurityEventMonitor {
	return &SecurityEventMonitor{
		now:          time.Now,
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
	}
}

// TrackFailedLogin records a failed login attempt from ip
func (m *SecurityEventMonitor) TrackFailedLogin(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.prune(now)

	m.failedLogins[ip] = append(m.failedLogins[ip], now)
	if len(m.failedLogins[ip]) >= failedLoginThreshold {
		m.alertLocked(now, ip, "Multiple failed logins detected")
	}
}

// alertLocked records and logs an alert at most once per cooldown per IP
func (m *SecurityEventMonitor) alertLocked(now time.Time, ip, reason string) {
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < alertCooldown {
		return
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{Timestamp: now, IP: ip, Reason: reason, Level: "CRITICAL"}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[:maxAlerts]
	}

	logging.L().Errorw("security alert", "reason", reason, "ip", ip, "attempts", len(m.failedLogins[ip]))
}

// prune drops attempts outside the window and expired cooldowns
func (m *SecurityEventMonitor) prune(now time.Time) {
	windowStart := now.Add(-failedLoginWindow)
	for ip, attempts := range m.failedLogins {
		kept := attempts[:0]
		for _, t := range attempts {
			if t.After(windowStart) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(m.failedLogins, ip)
		} else {
			m.failedLogins[ip] = kept
		}
	}
	for ip, last := range m.alertedIPs {
		if now.Sub(last) >= alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}

// GetRecentAlerts returns a copy of recent alerts
func (m *SecurityEventMonitor) GetRecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	alertsCopy := make([]SecurityAlert, len(m.alerts))
	copy(alertsCopy, m.alerts)
	return alertsCopy
}
