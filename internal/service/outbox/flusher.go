package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/metrics"
)

const (
	defaultBatchSize      = 100
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

// DeadLetterPublisher принимает события, которые не удалось опубликовать за все попытки.
type DeadLetterPublisher interface {
	PublishFailed(event domain.OutboxMessage, publishErr error) error
}

// FlusherOptions задаёт параметры Flusher.
type FlusherOptions struct {
	Logger         *log.Entry
	Metrics        *metrics.OutboxMetrics
	DeadLetter     DeadLetterPublisher
	Breaker        *CircuitBreaker
	BatchSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Option настраивает Flusher.
type Option func(*FlusherOptions)

func WithLogger(logger *log.Entry) Option {
	return func(opts *FlusherOptions) {
		opts.Logger = logger
	}
}

func WithMetrics(m *metrics.OutboxMetrics) Option {
	return func(opts *FlusherOptions) {
		opts.Metrics = m
	}
}

// WithDeadLetter задаёт publisher для отправки в DLQ после исчерпания попыток.
func WithDeadLetter(publisher DeadLetterPublisher) Option {
	return func(opts *FlusherOptions) {
		opts.DeadLetter = publisher
	}
}

// WithBreaker останавливает выгрузку после серии неудачных сообщений подряд.
func WithBreaker(cb *CircuitBreaker) Option {
	return func(opts *FlusherOptions) {
		opts.Breaker = cb
	}
}

// WithBatchSize задаёт размер батча из outbox.
func WithBatchSize(batchSize int) Option {
	return func(opts *FlusherOptions) {
		opts.BatchSize = batchSize
	}
}

// WithMaxAttempts задаёт число попыток публикации перед статусом failed.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *FlusherOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовый delay для exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *FlusherOptions) {
		opts.RetryBaseDelay = delay
	}
}

// Result — итог одного прохода Flush.
type Result struct {
	Sent         int    `json:"sent"`
	Failed       int    `json:"failed"`
	DeadLettered int    `json:"dead_lettered"`
	Pending      int    `json:"pending"`
	BreakerOpen  bool   `json:"breaker_open,omitempty"`
	Message      string `json:"message"`
}

// Flusher синхронно выгружает pending-сообщения outbox в publisher.
type Flusher struct {
	repo           domain.OutboxRepository
	publisher      domain.OutboxPublisher
	deadLetter     DeadLetterPublisher
	breaker        *CircuitBreaker
	logger         *log.Entry
	metrics        *metrics.OutboxMetrics
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewFlusher создаёт Flusher. При nil publisher сообщения остаются в outbox.
func NewFlusher(repo domain.OutboxRepository, publisher domain.OutboxPublisher, options ...Option) *Flusher {
	opts := FlusherOptions{
		BatchSize:      defaultBatchSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "outbox-flusher")
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewOutboxMetrics(nil)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}

	return &Flusher{
		repo:           repo,
		publisher:      publisher,
		deadLetter:     opts.DeadLetter,
		breaker:        opts.Breaker,
		logger:         logger,
		metrics:        opts.Metrics,
		batchSize:      opts.BatchSize,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
	}
}

// Flush публикует pending-сообщения батчами, пока они не закончатся.
// Каждое сообщение помечается sent или failed.
func (f *Flusher) Flush(ctx context.Context) (Result, error) {
	var res Result

	if f.publisher == nil {
		pending, err := f.refreshBacklog(ctx)
		if err != nil {
			return res, err
		}
		res.Pending = pending
		res.Message = fmt.Sprintf("no publisher configured, %d event(s) left pending", pending)
		f.logger.WithField("pending", pending).Info("outbox publishing is disabled")
		return res, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		events, err := f.repo.PullPending(ctx, f.batchSize)
		if err != nil {
			return res, fmt.Errorf("pull pending outbox messages: %w", err)
		}
		if len(events) == 0 {
			break
		}

		marked := 0
		for _, event := range events {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			ok, err := f.process(ctx, event, &res)
			if errors.Is(err, ErrBreakerOpen) {
				res.BreakerOpen = true
				break
			}
			if ok {
				marked++
			}
		}
		if res.BreakerOpen {
			break
		}

		// Ни одно сообщение не сменило статус: повторный опрос вернёт тот же батч.
		if marked == 0 || len(events) < f.batchSize {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	pending, err := f.refreshBacklog(ctx)
	if err != nil {
		return res, err
	}
	res.Pending = pending
	res.Message = fmt.Sprintf("%d event(s) published, %d failed", res.Sent, res.Failed)
	if res.BreakerOpen {
		res.Message += ", publishing stopped: broker unavailable"
	}

	f.logger.WithFields(log.Fields{
		"sent":          res.Sent,
		"failed":        res.Failed,
		"dead_lettered": res.DeadLettered,
		"pending":       res.Pending,
	}).Info("outbox flushed")

	return res, nil
}

// process публикует одно сообщение и возвращает true, если его статус удалось обновить.
// ErrBreakerOpen означает, что сообщение не отправлялось и осталось pending.
func (f *Flusher) process(ctx context.Context, event domain.OutboxMessage, res *Result) (bool, error) {
	publishErr := f.breaker.Execute("publish", func() error {
		return f.publishWithRetry(ctx, event)
	})
	if errors.Is(publishErr, ErrBreakerOpen) {
		return false, publishErr
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if publishErr == nil {
		if err := f.repo.MarkSent(ctx, event.ID); err != nil {
			f.logger.WithError(err).WithField("outbox_id", event.ID).Warn("failed to mark outbox as sent")
			return false, nil
		}
		res.Sent++
		return true, nil
	}

	f.logger.WithError(publishErr).WithFields(log.Fields{
		"outbox_id":  event.ID,
		"event_type": event.EventType,
	}).Error("outbox publish failed after retries")
	f.metrics.RecordPublishAttempt(metrics.PublishFailed)

	if f.deadLetter != nil {
		if err := f.deadLetter.PublishFailed(event, publishErr); err != nil {
			f.logger.WithError(err).WithField("outbox_id", event.ID).Warn("failed to publish to DLQ")
		} else {
			res.DeadLettered++
		}
	}

	if err := f.repo.MarkFailed(ctx, event.ID); err != nil {
		f.logger.WithError(err).WithField("outbox_id", event.ID).Warn("failed to mark outbox as failed")
		return false, nil
	}
	res.Failed++
	return true, nil
}

func (f *Flusher) publishWithRetry(ctx context.Context, event domain.OutboxMessage) error {
	var lastErr error

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		err := f.publisher.Publish(event)
		if err == nil {
			f.metrics.RecordPublishAttempt(metrics.PublishSent)
			return nil
		}
		lastErr = err
		f.metrics.RecordPublishAttempt(metrics.PublishRetryError)

		if attempt >= f.maxAttempts {
			break
		}

		delay := f.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", f.maxAttempts, lastErr)
}

func (f *Flusher) refreshBacklog(ctx context.Context) (int, error) {
	stats, err := f.repo.Stats(ctx)
	if err != nil {
		return 0, fmt.Errorf("collect outbox backlog stats: %w", err)
	}

	var age time.Duration
	if stats.PendingCount > 0 && !stats.OldestPendingAt.IsZero() {
		age = time.Since(stats.OldestPendingAt)
	}
	f.metrics.SetBacklog(stats.PendingCount, age)
	return stats.PendingCount, nil
}

func (f *Flusher) retryBackoff(attempt int) time.Duration {
	if f.retryBaseDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return f.retryBaseDelay
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := f.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}
