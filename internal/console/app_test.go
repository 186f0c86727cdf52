package console

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/eventbus/testbus"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/internal/core/notify"
	"github.com/colonyops/tally/internal/data/stores"
)

type testApp struct {
	*App
	bus *testbus.Bus
}

func newTestApp(t *testing.T, mutate ...func(*config.Config)) testApp {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	for _, fn := range mutate {
		fn(&cfg)
	}

	database, err := OpenDatabase(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store, err := OpenStore(context.Background(), &cfg, database)
	require.NoError(t, err)

	bus := testbus.New(t)
	app := NewApp(&cfg, store, bus.EventBus, notify.NewBus(stores.NewNotifyStore(database)))
	return testApp{App: app, bus: bus}
}

func as(role string) context.Context {
	return access.WithIdentity(context.Background(), access.Identity{User: "pat", Role: role})
}

func decline(context.Context, string) (bool, error) { return false, nil }

func TestApp_Grids(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) {
		dialogOff := false
		c.Entities = map[string]config.EntityConfig{
			"drivers":  {Hidden: true},
			"invoices": {Dialog: &dialogOff, Title: "Bills"},
		}
	})

	specs := app.Grids("admin")
	var names []string
	for _, s := range specs {
		names = append(names, s.Config.Name)
	}
	assert.Equal(t, []string{"customers", "products", "prices", "invoices", "salespeople", "warehouses"}, names)

	invoices, err := app.Grid("invoices", "admin")
	require.NoError(t, err)
	assert.Nil(t, invoices.Config.Dialog)
	assert.Equal(t, "Bills", invoices.Title)

	customers, err := app.Grid("customers", "admin")
	require.NoError(t, err)
	assert.NotNil(t, customers.Config.Rules.Duplicate)

	viewer, err := app.Grid("products", "viewer")
	require.NoError(t, err)
	assert.Equal(t, grid.Capabilities{}, viewer.Config.Capabilities)

	_, err = app.Grid("products", "nobody")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = app.Grid("unicorns", "admin")
	require.ErrorIs(t, err, ErrUnknownEntity)
}

func TestApp_EditPriceThroughController(t *testing.T) {
	app := newTestApp(t)
	ctx := as("admin")

	id, err := app.Store.Create(ctx, entity.Products, map[string]any{"sku": "A-1", "name": "Anvil", "price": 10.0})
	require.NoError(t, err)

	spec, err := app.Grid("products", "admin")
	require.NoError(t, err)
	ctrl := app.Controller(spec)
	require.NoError(t, ctrl.Load(ctx))

	rowID := grid.ID(id)
	require.NoError(t, ctrl.StartEdit(rowID, "price"))
	require.NoError(t, ctrl.SetValue(rowID, "price", 15.0))

	row, err := ctrl.Save(ctx, rowID)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, row.Get("price"), 0.001)
	assert.False(t, ctrl.State(rowID).Editing())

	rec, err := app.Store.Get(ctx, entity.Products, id)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, rec.Values["price"], 0.001)

	app.bus.AssertPublished(t, eventbus.EventRowUpdated)
	payload := app.bus.Payloads(eventbus.EventRowUpdated)[0].(eventbus.RowUpdatedPayload)
	assert.Equal(t, []string{"price"}, payload.Fields)
	assert.Equal(t, "pat", payload.User)
}

func TestApp_AddCustomerNotifies(t *testing.T) {
	app := newTestApp(t)
	ctx := as("admin")

	received := make(chan notify.Notification, 4)
	app.Notify.Subscribe(func(n notify.Notification) { received <- n })

	spec, err := app.Grid("customers", "admin")
	require.NoError(t, err)
	ctrl := app.Controller(spec)
	require.NoError(t, ctrl.Load(ctx))

	tmp, err := ctrl.StartAdd()
	require.NoError(t, err)
	require.NoError(t, ctrl.SetValue(tmp, "name", "Acme"))

	row, err := ctrl.Save(ctx, tmp)
	require.NoError(t, err)
	assert.False(t, row.ID.IsTemp())
	assert.False(t, row.IsNew)

	select {
	case n := <-received:
		assert.Equal(t, notify.LevelInfo, n.Level)
		assert.Equal(t, "customer "+string(row.ID)+" created", n.Message)
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}

	history, err := app.Notify.History(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestApp_DuplicateCustomerGate(t *testing.T) {
	app := newTestApp(t)
	ctx := as("admin")

	_, err := app.Create(ctx, "customers", grid.Values{"name": "Acme Corp"}, grid.AlwaysConfirm)
	require.NoError(t, err)

	_, err = app.Create(ctx, "customers", grid.Values{"name": "  acme   corp "}, grid.ConfirmFunc(decline))
	require.ErrorIs(t, err, grid.ErrCommitAborted)

	res, err := app.Create(ctx, "customers", grid.Values{"name": "ACME corp"}, grid.AlwaysConfirm)
	require.NoError(t, err)
	assert.Equal(t, grid.OutcomeCreated, res.Outcome)

	records, err := app.Store.List(ctx, entity.Customers)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestApp_CreateValidates(t *testing.T) {
	app := newTestApp(t)

	_, err := app.Create(as("admin"), "products", grid.Values{"sku": "A-1", "price": -1.0}, grid.AlwaysConfirm)
	var verr *grid.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := map[string]bool{}
	for _, fe := range verr.Fields() {
		fields[fe.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["price"])
}

func TestApp_ViewerCannotWrite(t *testing.T) {
	app := newTestApp(t)

	_, err := app.Create(as("viewer"), "products", grid.Values{"sku": "A-1"}, grid.AlwaysConfirm)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = app.Remove(as("viewer"), "products", "1", grid.AlwaysConfirm)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestApp_EditRekeysPrice(t *testing.T) {
	app := newTestApp(t)
	ctx := as("admin")

	_, err := app.Create(ctx, "prices", grid.Values{"product_id": int64(3), "customer_id": int64(7), "price": 9.5}, grid.AlwaysConfirm)
	require.NoError(t, err)

	res, err := app.Edit(ctx, "prices", "3|7", grid.Values{"customer_id": int64(8)}, grid.AlwaysConfirm)
	require.NoError(t, err)
	assert.True(t, res.Rekeyed)
	assert.Equal(t, grid.ID("3|8"), res.Row.ID)

	_, err = app.Store.Get(ctx, entity.Prices, "3|8")
	require.NoError(t, err)
}

func TestApp_Remove(t *testing.T) {
	app := newTestApp(t)
	ctx := as("admin")

	res, err := app.Create(ctx, "warehouses", grid.Values{"code": "W1", "name": "North"}, grid.AlwaysConfirm)
	require.NoError(t, err)

	removed, err := app.Remove(ctx, "warehouses", res.Row.ID, grid.ConfirmFunc(decline))
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = app.Remove(ctx, "warehouses", res.Row.ID, grid.AlwaysConfirm)
	require.NoError(t, err)
	assert.True(t, removed)

	app.bus.AssertPublished(t, eventbus.EventRowDeleted)
	payload := app.bus.Payloads(eventbus.EventRowDeleted)[0].(eventbus.RowDeletedPayload)
	assert.Equal(t, "admin", payload.Role)

	_, err = app.Remove(ctx, "warehouses", res.Row.ID, grid.AlwaysConfirm)
	require.ErrorIs(t, err, entity.ErrNotFound)
}
