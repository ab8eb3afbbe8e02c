package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/core/progression"
	"github.com/jakechorley/volunteer-hub/pkg/core/reminders"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
	"github.com/jakechorley/volunteer-hub/pkg/db"
	"github.com/jakechorley/volunteer-hub/pkg/identity"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.Database
	// Migrate creates the schema (postgres) or indexes (mongo) for the configured backend
	Migrate  func(ctx context.Context) ([]string, error)
	Identity identity.Provider
	Sessions *identity.SessionManager
	Notifier services.Notifier
	Policy   *progression.Policy
	Schedule *reminders.Schedule
	Logger   *zap.Logger
	Ctx      context.Context
}

// StoreCtx bounds a single store round trip by the configured timeout
func (a *AppContext) StoreCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(a.Ctx, a.Cfg.Store.Timeout)
}
