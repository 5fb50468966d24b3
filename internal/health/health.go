package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status представляет статус компонента
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// Check представляет проверку здоровья компонента
type Check struct {
	Name       string        `json:"name"`
	Status     Status        `json:"status"`
	Message    string        `json:"message,omitempty"`
	DurationMs int64         `json:"duration_ms"`
	Duration   time.Duration `json:"-"`
}

// Report — агрегированный результат всех проверок.
type Report struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Checker интерфейс для проверки здоровья компонента
type Checker interface {
	Check(ctx context.Context) Check
}

// Reporter выполняет зарегистрированные проверки и собирает отчёт.
type Reporter struct {
	mu        sync.RWMutex
	checkers  map[string]Checker
	version   string
	startTime time.Time
	now       func() time.Time
}

// NewReporter создаёт reporter; startTime отсчитывается от момента создания.
func NewReporter(version string) *Reporter {
	return &Reporter{
		checkers:  make(map[string]Checker),
		version:   version,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// RegisterChecker регистрирует проверку компонента
func (r *Reporter) RegisterChecker(name string, checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Names возвращает имена проверок в алфавитном порядке.
func (r *Reporter) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Report выполняет все проверки. Общий статус — худший из статусов проверок.
func (r *Reporter) Report(ctx context.Context) Report {
	r.mu.RLock()
	checkers := make(map[string]Checker, len(r.checkers))
	for k, v := range r.checkers {
		checkers[k] = v
	}
	r.mu.RUnlock()

	checks := make(map[string]Check, len(checkers))
	overallStatus := StatusHealthy

	for name, checker := range checkers {
		check := checker.Check(ctx)
		checks[name] = check

		if check.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
		} else if check.Status == StatusDegraded && overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}

	now := r.now()
	return Report{
		Status:        overallStatus,
		Timestamp:     now.UTC(),
		Checks:        checks,
		Version:       r.version,
		UptimeSeconds: int64(now.Sub(r.startTime).Seconds()),
	}
}

// SimpleChecker простая проверка с функцией
type SimpleChecker struct {
	name    string
	checkFn func(ctx context.Context) error
}

// NewSimpleChecker создаёт простую проверку: ошибка означает unhealthy.
func NewSimpleChecker(name string, checkFn func(ctx context.Context) error) *SimpleChecker {
	return &SimpleChecker{
		name:    name,
		checkFn: checkFn,
	}
}

// Check выполняет проверку
func (c *SimpleChecker) Check(ctx context.Context) Check {
	start := time.Now()
	err := c.checkFn(ctx)
	duration := time.Since(start)

	if err != nil {
		return Check{
			Name:       c.name,
			Status:     StatusUnhealthy,
			Message:    err.Error(),
			DurationMs: duration.Milliseconds(),
			Duration:   duration,
		}
	}

	return Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: duration.Milliseconds(),
		Duration:   duration,
	}
}

// ThresholdChecker сообщает degraded, когда измеренное значение превышает порог.
type ThresholdChecker struct {
	name      string
	threshold int
	measure   func(ctx context.Context) (int, error)
}

func NewThresholdChecker(name string, threshold int, measure func(ctx context.Context) (int, error)) *ThresholdChecker {
	return &ThresholdChecker{name: name, threshold: threshold, measure: measure}
}

func (c *ThresholdChecker) Check(ctx context.Context) Check {
	start := time.Now()
	value, err := c.measure(ctx)
	duration := time.Since(start)

	check := Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: duration.Milliseconds(),
		Duration:   duration,
	}
	switch {
	case err != nil:
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	case value > c.threshold:
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("value %d exceeds threshold %d", value, c.threshold)
	}
	return check
}
