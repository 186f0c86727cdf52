package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/grid"
)

// EntityService adapts an entity.Store to grid.Source for one kind and
// announces every successful write on the event bus.
type EntityService struct {
	schema entity.Schema
	store  entity.Store
	bus    *eventbus.EventBus
	log    zerolog.Logger
}

var _ grid.Source = (*EntityService)(nil)

func NewEntityService(schema entity.Schema, store entity.Store, bus *eventbus.EventBus, log zerolog.Logger) *EntityService {
	return &EntityService{
		schema: schema,
		store:  store,
		bus:    bus,
		log:    log.With().Str("entity", string(schema.Kind)).Logger(),
	}
}

func (s *EntityService) Schema() entity.Schema { return s.schema }

// Fetch returns every record as a grid row.
func (s *EntityService) Fetch(ctx context.Context) ([]grid.Row, error) {
	records, err := s.store.List(ctx, s.schema.Kind)
	if err != nil {
		return nil, err
	}

	rows := make([]grid.Row, len(records))
	for i, rec := range records {
		rows[i] = recordToRow(rec)
	}
	return rows, nil
}

// Get returns one record as a grid row.
func (s *EntityService) Get(ctx context.Context, id grid.ID) (grid.Row, error) {
	rec, err := s.store.Get(ctx, s.schema.Kind, string(id))
	if err != nil {
		return grid.Row{}, err
	}
	return recordToRow(rec), nil
}

func (s *EntityService) Create(ctx context.Context, values grid.Values) (grid.ID, error) {
	id, err := s.store.Create(ctx, s.schema.Kind, values)
	if err != nil {
		return "", err
	}

	who := access.FromContext(ctx)
	s.log.Info().Ctx(ctx).Str("id", id).Msg("record created")
	s.bus.PublishRowCreated(eventbus.RowCreatedPayload{
		Entity: string(s.schema.Kind),
		ID:     id,
		User:   who.User,
	})
	return grid.ID(id), nil
}

func (s *EntityService) Update(ctx context.Context, id grid.ID, changed grid.Values) error {
	if err := s.store.Update(ctx, s.schema.Kind, string(id), changed); err != nil {
		return err
	}

	who := access.FromContext(ctx)
	s.log.Info().Ctx(ctx).Str("id", string(id)).Strs("fields", changed.Fields()).Msg("record updated")
	s.bus.PublishRowUpdated(eventbus.RowUpdatedPayload{
		Entity: string(s.schema.Kind),
		ID:     string(id),
		Fields: changed.Fields(),
		User:   who.User,
	})
	return nil
}

func (s *EntityService) Delete(ctx context.Context, id grid.ID, who access.Identity) error {
	if err := s.store.Delete(ctx, s.schema.Kind, string(id)); err != nil {
		return err
	}

	s.log.Info().Ctx(ctx).Str("id", string(id)).Str("by", who.String()).Msg("record deleted")
	s.bus.PublishRowDeleted(eventbus.RowDeletedPayload{
		Entity: string(s.schema.Kind),
		ID:     string(id),
		User:   who.User,
		Role:   who.Role,
	})
	return nil
}

// Duplicate returns a confirmation prompt when another record has the same
// normalized UniqueBy value as row.
func (s *EntityService) Duplicate(ctx context.Context, row grid.Row) (string, error) {
	field := s.schema.UniqueBy
	if field == "" {
		return "", nil
	}

	want := normalizeName(grid.FormatValue(row.Get(field)))
	if want == "" {
		return "", nil
	}

	records, err := s.store.List(ctx, s.schema.Kind)
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		if grid.ID(rec.ID) == row.ID {
			continue
		}
		if normalizeName(grid.FormatValue(rec.Values[field])) == want {
			return fmt.Sprintf("A %s with %s %q already exists (id %s). Save anyway?",
				singular(s.schema.Kind), field, grid.FormatValue(rec.Values[field]), rec.ID), nil
		}
	}
	return "", nil
}

// normalizeName folds case and collapses whitespace.
func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func singular(kind entity.Kind) string {
	switch k := string(kind); {
	case k == "salespeople":
		return "salesperson"
	case strings.HasSuffix(k, "s"):
		return strings.TrimSuffix(k, "s")
	default:
		return k
	}
}

func recordToRow(rec entity.Record) grid.Row {
	return grid.Row{ID: grid.ID(rec.ID), Values: grid.Values(rec.Values)}
}
