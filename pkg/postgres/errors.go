package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// mapError translates driver errors into the model sentinels. The original error stays in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", model.ErrNotFound, err)
	}

	// caller timeout or an unreachable server are retryable
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %w", model.ErrTransient, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", model.ErrTransient, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", model.ErrTransient, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %w", model.ErrConflict, err)
		case "23514", "23502": // check_violation, not_null_violation
			return fmt.Errorf("%w: %w", model.ErrValidation, err)
		case "57P01", "57P03", "53300": // admin_shutdown, cannot_connect_now, too_many_connections
			return fmt.Errorf("%w: %w", model.ErrTransient, err)
		}
	}

	return err
}
