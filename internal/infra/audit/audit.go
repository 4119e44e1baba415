package audit

import (
	"context"
	"log/slog"
	"time"

	"discount-service/internal/pkg/clock"
	"discount-service/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordTimeout = 3 * time.Second

// PostgresSink appends audit events to the audit_logs table and mirrors
// them to the structured log. Failures are logged and swallowed so a
// broken audit trail never fails the operation it describes.
type PostgresSink struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

func NewPostgresSink(pool *pgxpool.Pool, clk clock.Clock) shared.AuditSink {
	return &PostgresSink{pool: pool, clock: clk}
}

func (s *PostgresSink) Record(ctx context.Context, event shared.AuditEvent) {
	slog.InfoContext(ctx, "audit event",
		"action", event.Action,
		"discount_id", event.DiscountID,
		"code", event.Code,
	)

	// Detach from the request context so cancellation after the response
	// does not drop the row.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	detail := event.Detail
	if detail == nil {
		detail = map[string]any{}
	}

	query := `
		INSERT INTO audit_logs (id, action, discount_id, code, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.pool.Exec(writeCtx, query,
		uuid.New(),
		event.Action,
		event.DiscountID,
		event.Code,
		detail,
		s.clock.Now(),
	)
	if err != nil {
		slog.WarnContext(ctx, "failed to persist audit event",
			"action", event.Action,
			"discount_id", event.DiscountID,
			"error", err.Error(),
		)
	}
}
