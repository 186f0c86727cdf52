// Package console wires the entity backends, the event bus and the grid
// controllers into the application the commands and the TUI drive.
package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/internal/core/kv"
	"github.com/colonyops/tally/internal/core/logging"
	"github.com/colonyops/tally/internal/core/notify"
	"github.com/colonyops/tally/internal/data/db"
)

var (
	ErrForbidden     = errors.New("permission denied")
	ErrUnknownEntity = errors.New("unknown entity")
)

// App is the central entry point for all console operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config   *config.Config
	Policy   *access.Policy
	Bus      *eventbus.EventBus
	Notify   *notify.Bus
	Store    entity.Store
	Services map[entity.Kind]*EntityService
	// DB is the local database holding notifications, and records when the
	// backend is sqlite.
	DB *db.DB
	// Prefs holds per-user console state. It may be nil.
	Prefs kv.KV

	log zerolog.Logger
}

// NewApp constructs an App from explicit dependencies. It bridges bus
// notifications into the notification bus; the caller starts the event bus.
func NewApp(cfg *config.Config, store entity.Store, bus *eventbus.EventBus, notifyBus *notify.Bus) *App {
	app := &App{
		Config:   cfg,
		Policy:   cfg.Policy(),
		Bus:      bus,
		Notify:   notifyBus,
		Store:    store,
		Services: make(map[entity.Kind]*EntityService),
		log:      logging.Component("console"),
	}

	for _, schema := range entity.All() {
		app.Services[schema.Kind] = NewEntityService(schema, store, bus, app.log)
	}

	eventbus.NewNotificationRouter(bus).Register()
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		notifyBus.Publish(notify.Notification{Level: p.Level, Message: p.Message})
	})

	return app
}

// Service returns the service for kind.
func (a *App) Service(kind string) (*EntityService, error) {
	svc, ok := a.Services[entity.Kind(kind)]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownEntity, kind, entity.Kinds())
	}
	return svc, nil
}

// Grids returns the grids role may open, in tab order.
func (a *App) Grids(role string) []GridSpec {
	var out []GridSpec
	for _, schema := range entity.All() {
		if spec, ok := BuildGrid(a.Config, a.Policy, role, a.Services[schema.Kind]); ok {
			out = append(out, spec)
		}
	}
	return out
}

// Grid resolves a single grid for role.
func (a *App) Grid(kind, role string) (GridSpec, error) {
	svc, err := a.Service(kind)
	if err != nil {
		return GridSpec{}, err
	}
	spec, ok := BuildGrid(a.Config, a.Policy, role, svc)
	if !ok {
		return GridSpec{}, fmt.Errorf("%w: role %q cannot view %s", ErrForbidden, role, kind)
	}
	return spec, nil
}

// Controller builds a grid controller for spec. Notifications go to the
// notification bus and invalidations to the event bus unless opts override
// them.
func (a *App) Controller(spec GridSpec, opts ...grid.Option) *grid.Controller {
	base := []grid.Option{
		grid.WithNotifier(a.Notify),
		grid.WithTrigger(a.Bus),
		grid.WithLogger(logging.Grid(spec.Config.Name)),
	}
	return grid.New(spec.Config, a.Services[spec.Schema.Kind], append(base, opts...)...)
}

// Create commits a new record through the grid pipeline of kind, so the CLI
// applies the same validation and duplicate checks as the TUI.
func (a *App) Create(ctx context.Context, kind string, values grid.Values, confirm grid.Confirmer) (grid.Result, error) {
	spec, pipeline, err := a.pipeline(ctx, kind, confirm)
	if err != nil {
		return grid.Result{}, err
	}
	if !spec.Config.Capabilities.Addable {
		return grid.Result{}, fmt.Errorf("%w: %w", ErrForbidden, grid.ErrNotAddable)
	}

	blank := grid.Row{ID: grid.NewTempID(), IsNew: true, Values: grid.Values{}}
	return pipeline.Commit(ctx, blank.With(values), blank)
}

// Edit commits changes to an existing record through the grid pipeline.
func (a *App) Edit(ctx context.Context, kind string, id grid.ID, values grid.Values, confirm grid.Confirmer) (grid.Result, error) {
	spec, pipeline, err := a.pipeline(ctx, kind, confirm)
	if err != nil {
		return grid.Result{}, err
	}
	if !spec.Config.Capabilities.Editable {
		return grid.Result{}, fmt.Errorf("%w: %w", ErrForbidden, grid.ErrNotEditable)
	}

	current, err := a.Services[spec.Schema.Kind].Get(ctx, id)
	if err != nil {
		return grid.Result{}, err
	}
	return pipeline.Commit(ctx, current.With(values), current)
}

// Remove deletes a record after confirmation. It returns false when the
// confirmation was declined.
func (a *App) Remove(ctx context.Context, kind string, id grid.ID, confirm grid.Confirmer) (bool, error) {
	who := access.FromContext(ctx)
	spec, err := a.Grid(kind, who.Role)
	if err != nil {
		return false, err
	}
	if !spec.Config.Capabilities.Deletable {
		return false, fmt.Errorf("%w: %w", ErrForbidden, grid.ErrNotDeletable)
	}

	svc := a.Services[spec.Schema.Kind]
	if _, err := svc.Get(ctx, id); err != nil {
		return false, err
	}

	ok, err := confirm.Confirm(ctx, fmt.Sprintf("Delete %s %s?", singular(spec.Schema.Kind), id))
	if err != nil || !ok {
		return false, err
	}
	if err := svc.Delete(ctx, id, who); err != nil {
		return false, err
	}
	return true, nil
}

func (a *App) pipeline(ctx context.Context, kind string, confirm grid.Confirmer) (GridSpec, *grid.Pipeline, error) {
	who := access.FromContext(ctx)
	spec, err := a.Grid(kind, who.Role)
	if err != nil {
		return GridSpec{}, nil, err
	}
	p := grid.NewPipeline(a.Services[spec.Schema.Kind], spec.Config.Rules, confirm, logging.Grid(spec.Config.Name))
	return spec, p, nil
}
