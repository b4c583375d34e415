package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

// ErrConflict marks a failed compare-and-set.
var ErrConflict = errors.New("aggregate conflict")

func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// MapError maps infrastructure failures into gate error codes. Engine errors
// pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gateErr *gate.Error
	if errors.As(err, &gateErr) {
		return err
	}
	switch {
	case errors.Is(err, ErrConflict):
		return gate.Wrap(gate.CodeConflict, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return gate.Wrap(gate.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return gate.Wrap(gate.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return gate.Wrap(gate.CodeConflict, op, err) // unique_violation
		case "40001", "40P01", "55P03":
			return gate.Wrap(gate.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "already exists"),
		strings.Contains(msg, "unique constraint failed"):
		return gate.Wrap(gate.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"):
		return gate.Wrap(gate.CodeRetryable, op, err)
	default:
		return gate.Wrap(gate.CodeInternal, op, err)
	}
}
