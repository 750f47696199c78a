package sales

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/config"
	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/repository/sqlstore"
)

var (
	manager  = models.Caller{UserID: "u-manager", Role: models.RoleManager}
	operator = models.Caller{UserID: "u-operator", Role: models.RoleOperator}
	saleDay  = time.Date(2024, 9, 14, 0, 0, 0, 0, time.UTC)
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := sqlstore.Open(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, sqlstore.Migrate(context.Background(), db))
	t.Cleanup(func() { _ = sqlstore.Close(db) })

	checker, err := authz.New(nil)
	require.NoError(t, err)
	return NewService(db, sqlstore.New(), checker, nil, nil), db
}

func seedCattle(t *testing.T, db *gorm.DB, tag string, status models.CattleStatus) *models.Cattle {
	t.Helper()
	c := &models.Cattle{
		Tag: tag, Breed: "Zebu", Gender: models.GenderMale, Status: status,
		InitialWeight: dec("280"), CurrentWeight: dec("410"),
	}
	require.NoError(t, sqlstore.New().CreateCattle(context.Background(), db, c))
	return c
}

func saleFor(cattleID string) CreateInput {
	return CreateInput{CattleID: cattleID, FinalWeight: dec("455.5"), SalePrice: dec("1650"), BuyerName: "Conakry Abattoir", SaleDate: saleDay}
}

func TestCreateMarksCattleSoldFromAnyStatus(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	store := sqlstore.New()

	for i, status := range []models.CattleStatus{models.CattleActive, models.CattleSick, models.CattleQuarantine} {
		c := seedCattle(t, db, string(rune('A'+i))+"-tag", status)

		sale, err := svc.Create(ctx, manager, saleFor(c.ID))
		require.NoError(t, err, status)
		assert.Equal(t, manager.UserID, sale.UserID)

		got, err := store.FindCattle(ctx, db, c.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CattleSold, got.Status, "from %s", status)
		assert.True(t, got.CurrentWeight.Equal(dec("455.5")), "got %s", got.CurrentWeight)
	}
}

func TestCreateRejections(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	c := seedCattle(t, db, "S-1", models.CattleActive)

	_, err := svc.Create(ctx, operator, saleFor(c.ID))
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.Create(ctx, manager, saleFor("missing"))
	assert.ErrorIs(t, err, models.ErrNotFound)

	bad := saleFor(c.ID)
	bad.SaleDate = time.Time{}
	_, err = svc.Create(ctx, manager, bad)
	assert.ErrorIs(t, err, models.ErrValidation)

	bad = saleFor(c.ID)
	bad.SalePrice = dec("-5")
	_, err = svc.Create(ctx, manager, bad)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Create(ctx, manager, saleFor(c.ID))
	require.NoError(t, err)

	_, err = svc.Create(ctx, manager, saleFor(c.ID))
	assert.ErrorIs(t, err, models.ErrAlreadySold)

	sales, err := svc.List(ctx, manager, models.SaleFilter{CattleID: c.ID})
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestSummaryAndProfit(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	store := sqlstore.New()

	empty, err := svc.Summary(ctx, manager)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalSales)
	assert.True(t, empty.AverageSalePrice.IsZero())

	bought := seedCattle(t, db, "P-1", models.CattleActive)
	supplier := &models.Supplier{Name: "Mamou Herders"}
	require.NoError(t, store.CreateSupplier(ctx, db, supplier))
	require.NoError(t, store.CreatePurchase(ctx, db, &models.Purchase{
		CattleID: bought.ID, SupplierID: supplier.ID, PurchaseDate: saleDay.AddDate(0, -4, 0),
		InitialWeight: dec("280"), PurchasePrice: dec("1100"),
	}))
	homebred := seedCattle(t, db, "P-2", models.CattleActive)

	first, err := svc.Create(ctx, manager, saleFor(bought.ID))
	require.NoError(t, err)
	second := saleFor(homebred.ID)
	second.SalePrice = dec("1350")
	second.FinalWeight = dec("400")
	secondSale, err := svc.Create(ctx, manager, second)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, manager)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalSales)
	assert.Equal(t, "3000", summary.TotalRevenue.String())
	assert.Equal(t, "1500", summary.AverageSalePrice.String())
	assert.Equal(t, "427.75", summary.AverageWeight.String())

	profit, err := svc.Profit(ctx, manager, first.ID)
	require.NoError(t, err)
	require.True(t, profit.Profit.Valid)
	assert.Equal(t, "550", profit.Profit.Decimal.String())

	noPurchase, err := svc.Profit(ctx, manager, secondSale.ID)
	require.NoError(t, err)
	assert.False(t, noPurchase.Profit.Valid)
	assert.False(t, noPurchase.PurchasePrice.Valid)
}
