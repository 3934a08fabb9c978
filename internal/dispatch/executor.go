package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"backoffice/internal/audit"
	"backoffice/internal/metrics"
)

// Executor runs routed operations with per-tenant timeouts, fallback
// handling and audit emission. Audit and metric failures never change the
// business outcome of an execution.
type Executor struct {
	recorder        audit.Recorder
	logger          *zap.Logger
	fallbackEnabled bool
}

func NewExecutor(recorder audit.Recorder, logger *zap.Logger, fallbackEnabled bool) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{recorder: recorder, logger: logger, fallbackEnabled: fallbackEnabled}
}

// FallbackEnabled reports whether remote failures may be retried locally.
func (ex *Executor) FallbackEnabled() bool {
	return ex.fallbackEnabled
}

// outcome carries the result of one backend attempt. It never crosses the
// package boundary; callers receive plain (value, error) pairs.
type outcome[T any] struct {
	value   T
	err     error
	elapsed time.Duration
}

func attempt[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) outcome[T] {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	value, err := fn(attemptCtx)
	return outcome[T]{value: value, err: err, elapsed: time.Since(start)}
}

// emit runs an audit emission, guarding against panicking recorder
// implementations. A failed emission must not break the business flow.
func (ex *Executor) emit(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			metrics.AuditWriteFailuresTotal.Inc()
			ex.logger.Error("audit emission panicked", zap.Any("panic", r))
		}
	}()
	fn()
}

// ExecuteWithFallback runs the primary function and, when it fails and a
// fallback is configured, retries once on the fallback. eventType names the
// audit event recorded on success; pass the query event for reads that do not
// need a durable success row. correlationID ties the emitted audit entries to
// one dispatched operation.
func ExecuteWithFallback[T any](
	ctx context.Context,
	ex *Executor,
	op Operation,
	tenantID string,
	correlationID string,
	timeout time.Duration,
	eventType audit.EventType,
	primary func(context.Context) (T, error),
	fallback func(context.Context) (T, error),
) (T, error) {
	primaryOut := attempt(ctx, timeout, primary)
	metrics.DispatchOperationDuration.WithLabelValues(op.Label(), "primary").Observe(primaryOut.elapsed.Seconds())

	if primaryOut.err == nil {
		recordSuccess(ctx, ex, op, tenantID, correlationID, eventType, primaryOut)
		return primaryOut.value, nil
	}

	if fallback == nil || !ex.fallbackEnabled {
		metrics.DispatchFallbacksTotal.WithLabelValues(op.Label(), "unavailable").Inc()
		ex.emit(func() {
			ex.recorder.LogError(ctx, primaryOut.err,
				fmt.Sprintf("%s failed with no fallback (correlation %s)", op.Label(), correlationID),
				audit.Event{
					Type:       audit.EventDispatchFailure,
					TenantID:   tenantID,
					EntityName: string(op.Entity),
					EntityID:   op.Identifier,
					Action:     string(op.Verb),
					DurationMs: primaryOut.elapsed.Milliseconds(),
				})
		})
		var zero T
		return zero, errors.Join(ErrPrimaryFailedNoFallback, primaryOut.err)
	}

	ex.logger.Warn("primary backend failed, trying fallback",
		zap.String("operation", op.Label()),
		zap.String("tenant_id", tenantID),
		zap.String("correlation_id", correlationID),
		zap.Error(primaryOut.err))

	fallbackOut := attempt(ctx, timeout, fallback)
	metrics.DispatchOperationDuration.WithLabelValues(op.Label(), "fallback").Observe(fallbackOut.elapsed.Seconds())

	if fallbackOut.err == nil {
		metrics.DispatchFallbacksTotal.WithLabelValues(op.Label(), "recovered").Inc()
		ex.emit(func() {
			ex.recorder.Log(ctx, audit.Event{
				Type:     audit.EventDispatchFallback,
				TenantID: tenantID,
				Description: fmt.Sprintf("%s served by fallback after primary failure (correlation %s): %v",
					op.Label(), correlationID, primaryOut.err),
				EntityName: string(op.Entity),
				EntityID:   op.Identifier,
				Action:     string(op.Verb),
				Success:    true,
				DurationMs: (primaryOut.elapsed + fallbackOut.elapsed).Milliseconds(),
			})
		})
		recordSuccess(ctx, ex, op, tenantID, correlationID, eventType, fallbackOut)
		return fallbackOut.value, nil
	}

	metrics.DispatchFallbacksTotal.WithLabelValues(op.Label(), "failed").Inc()
	completeErr := &CompleteFailureError{Op: op, Primary: primaryOut.err, Fallback: fallbackOut.err}
	ex.emit(func() {
		ex.recorder.LogError(ctx, completeErr,
			fmt.Sprintf("%s failed on both backends (correlation %s)", op.Label(), correlationID),
			audit.Event{
				Type:       audit.EventDispatchFailure,
				TenantID:   tenantID,
				EntityName: string(op.Entity),
				EntityID:   op.Identifier,
				Action:     string(op.Verb),
				DurationMs: (primaryOut.elapsed + fallbackOut.elapsed).Milliseconds(),
			})
	})
	var zero T
	return zero, completeErr
}

// ExecuteWithAudit runs a single-backend operation and records a symmetric
// success or failure audit entry. Used for mutations that are routed to
// exactly one side.
func ExecuteWithAudit[T any](
	ctx context.Context,
	ex *Executor,
	op Operation,
	tenantID string,
	correlationID string,
	timeout time.Duration,
	eventType audit.EventType,
	oldValue any,
	action func(context.Context) (T, error),
) (T, error) {
	out := attempt(ctx, timeout, action)
	metrics.DispatchOperationDuration.WithLabelValues(op.Label(), "primary").Observe(out.elapsed.Seconds())

	if out.err != nil {
		ex.emit(func() {
			ex.recorder.LogError(ctx, out.err,
				fmt.Sprintf("%s failed (correlation %s)", op.Label(), correlationID),
				audit.Event{
					Type:       eventType,
					TenantID:   tenantID,
					EntityName: string(op.Entity),
					EntityID:   op.Identifier,
					Action:     string(op.Verb),
					OldValue:   oldValue,
					DurationMs: out.elapsed.Milliseconds(),
				})
		})
		var zero T
		return zero, out.err
	}

	ex.emit(func() {
		ex.recorder.Log(ctx, audit.Event{
			Type:        eventType,
			TenantID:    tenantID,
			Description: fmt.Sprintf("%s completed (correlation %s)", op.Label(), correlationID),
			EntityName:  string(op.Entity),
			EntityID:    op.Identifier,
			Action:      string(op.Verb),
			OldValue:    oldValue,
			NewValue:    out.value,
			Success:     true,
			DurationMs:  out.elapsed.Milliseconds(),
		})
	})
	return out.value, nil
}

// recordSuccess emits the post-success trace for a routed operation. Reads
// stay out of the durable trail; mutations get a full success row.
func recordSuccess[T any](ctx context.Context, ex *Executor, op Operation, tenantID, correlationID string, eventType audit.EventType, out outcome[T]) {
	ex.logger.Debug("operation completed",
		zap.String("operation", op.Label()),
		zap.String("tenant_id", tenantID),
		zap.String("correlation_id", correlationID),
		zap.Duration("elapsed", out.elapsed))
	if eventType == audit.EventDataQuery {
		return
	}
	ex.emit(func() {
		ex.recorder.Log(ctx, audit.Event{
			Type:        eventType,
			TenantID:    tenantID,
			Description: fmt.Sprintf("%s completed (correlation %s)", op.Label(), correlationID),
			EntityName:  string(op.Entity),
			EntityID:    op.Identifier,
			Action:      string(op.Verb),
			NewValue:    out.value,
			Success:     true,
			DurationMs:  out.elapsed.Milliseconds(),
		})
	})
}
