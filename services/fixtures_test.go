package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"restopos-backend/config"
	"restopos-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.ConnectDB("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type posFixture struct {
	db      *gorm.DB
	clock   *fakeClock
	events  *recordingPublisher
	deps    Deps
	orders  *OrderService
	tables  *TableService
	billing *BillingService
	catalog *CatalogService
	reports *ReportService
	staff   uuid.UUID
}

func newPOS(t *testing.T) *posFixture {
	t.Helper()
	db := newTestDB(t)
	clock := &fakeClock{now: testNow}
	events := &recordingPublisher{}
	deps := Deps{Publisher: events, Now: clock.Now}

	staff := models.User{Email: "waiter@example.com", Name: "Wanda", Password: "secret123", Role: models.RoleWaiter, IsActive: true}
	require.NoError(t, db.Create(&staff).Error)

	return &posFixture{
		db:      db,
		clock:   clock,
		events:  events,
		deps:    deps,
		orders:  NewOrderService(db, decimal.RequireFromString("0.10"), deps),
		tables:  NewTableService(db, deps),
		billing: NewBillingService(db, []string{"cash", "card", "mobile", "other"}, DefaultQRGenerator{BaseURL: "http://pos.test"}, deps),
		catalog: NewCatalogService(db),
		reports: NewReportService(db, deps),
		staff:   staff.ID,
	}
}

func (f *posFixture) table(t *testing.T, number string) *models.Table {
	t.Helper()
	table, err := f.tables.CreateTable(context.Background(), TableInput{TableNumber: number, Capacity: 4})
	require.NoError(t, err)
	return table
}

func (f *posFixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := f.catalog.CreateCategory(context.Background(), CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (f *posFixture) menuItem(t *testing.T, categoryID uuid.UUID, ref, name, price string) *models.MenuItem {
	t.Helper()
	item, err := f.catalog.CreateMenuItem(context.Background(), MenuItemInput{
		CategoryID:      categoryID,
		ReferenceNumber: ref,
		Name:            name,
		Price:           decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return item
}

// openWith opens an order on table and adds each item once.
func (f *posFixture) openWith(t *testing.T, table *models.Table, items ...*models.MenuItem) *models.Order {
	t.Helper()
	ctx := context.Background()
	order, created, err := f.orders.FindOrCreateOrder(ctx, table.ID, f.staff)
	require.NoError(t, err)
	require.True(t, created)
	for _, item := range items {
		order, err = f.orders.AddItem(ctx, order.ID, item.ID, 1, "", f.staff)
		require.NoError(t, err)
	}
	return order
}

func (f *posFixture) reloadTable(t *testing.T, id uuid.UUID) *models.Table {
	t.Helper()
	table, err := f.tables.GetTable(context.Background(), id)
	require.NoError(t, err)
	return table
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, decimal.RequireFromString(want).StringFixed(2), got.StringFixed(2), msgAndArgs...)
}
