package auth

import (
	"sync"
	"time"

	"github.com/seanankenbruck/sql-copilot/internal/errors"
)

// QuotaUsage tracks how many model-backed queries a user has issued in the
// current day and month. Every query and refinement costs one unit.
type QuotaUsage struct {
	UserID       string    `json:"user_id"`
	DailyLimit   int       `json:"daily_limit"`
	MonthlyLimit int       `json:"monthly_limit"`
	DayCount     int       `json:"day_count"`
	MonthCount   int       `json:"month_count"`
	CurrentDay   time.Time `json:"current_day"`
	CurrentMonth time.Time `json:"current_month"`
	TotalCount   int       `json:"total_count"`
}

// QuotaManager enforces per-user query quotas. A zero limit means
// unlimited.
type QuotaManager struct {
	defaultDaily   int
	defaultMonthly int
	usage          map[string]*QuotaUsage // userID -> usage
	mu             sync.RWMutex
}

// NewQuotaManager creates a quota manager with process-wide default limits
func NewQuotaManager(defaultDaily, defaultMonthly int) *QuotaManager {
	return &QuotaManager{
		defaultDaily:   defaultDaily,
		defaultMonthly: defaultMonthly,
		usage:          make(map[string]*QuotaUsage),
	}
}

// SetLimits overrides the limits for one user
func (qm *QuotaManager) SetLimits(userID string, daily, monthly int) {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	usage := qm.getOrCreateLocked(userID)
	usage.DailyLimit = daily
	usage.MonthlyLimit = monthly
}

// GetUsage returns a copy of the usage record for a user
func (qm *QuotaManager) GetUsage(userID string) *QuotaUsage {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	usage := qm.getOrCreateLocked(userID)
	qm.rollWindowsLocked(usage, time.Now())
	usageCopy := *usage
	return &usageCopy
}

// Consume records one query for a user, failing if either window is
// already at its limit. The count is only recorded on success.
func (qm *QuotaManager) Consume(userID string) error {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	usage := qm.getOrCreateLocked(userID)
	qm.rollWindowsLocked(usage, time.Now())

	if usage.DailyLimit > 0 && usage.DayCount >= usage.DailyLimit {
		return errors.NewQuotaExceededError(userID, "daily")
	}
	if usage.MonthlyLimit > 0 && usage.MonthCount >= usage.MonthlyLimit {
		return errors.NewQuotaExceededError(userID, "monthly")
	}

	usage.DayCount++
	usage.MonthCount++
	usage.TotalCount++

	return nil
}

// ListUsage returns usage records for all known users (admin only)
func (qm *QuotaManager) ListUsage() []*QuotaUsage {
	qm.mu.RLock()
	defer qm.mu.RUnlock()

	records := make([]*QuotaUsage, 0, len(qm.usage))
	for _, usage := range qm.usage {
		usageCopy := *usage
		records = append(records, &usageCopy)
	}
	return records
}

func (qm *QuotaManager) getOrCreateLocked(userID string) *QuotaUsage {
	usage, exists := qm.usage[userID]
	if !exists {
		now := time.Now()
		usage = &QuotaUsage{
			UserID:       userID,
			DailyLimit:   qm.defaultDaily,
			MonthlyLimit: qm.defaultMonthly,
			CurrentDay:   startOfDay(now),
			CurrentMonth: startOfMonth(now),
		}
		qm.usage[userID] = usage
	}
	return usage
}

// rollWindowsLocked resets counts whose window has passed
func (qm *QuotaManager) rollWindowsLocked(usage *QuotaUsage, now time.Time) {
	if !isSameDay(usage.CurrentDay, now) {
		usage.CurrentDay = startOfDay(now)
		usage.DayCount = 0
	}
	if !isSameMonth(usage.CurrentMonth, now) {
		usage.CurrentMonth = startOfMonth(now)
		usage.MonthCount = 0
	}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
}

func isSameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func isSameMonth(t1, t2 time.Time) bool {
	y1, m1, _ := t1.Date()
	y2, m2, _ := t2.Date()
	return y1 == y2 && m1 == m2
}
