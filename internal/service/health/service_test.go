package health

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/config"
	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/repository/sqlstore"
)

var (
	operator = models.Caller{UserID: "u-vet", Role: models.RoleOperator}
	start    = time.Date(2024, 4, 2, 7, 30, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*Service, *models.Cattle) {
	t.Helper()
	ctx := context.Background()
	db, err := sqlstore.Open(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, sqlstore.Migrate(ctx, db))
	t.Cleanup(func() { _ = sqlstore.Close(db) })

	checker, err := authz.New(nil)
	require.NoError(t, err)

	cattle := &models.Cattle{
		Tag: "H-01", Breed: "Ndama", Gender: models.GenderFemale, Status: models.CattleActive,
		InitialWeight: decimal.NewFromInt(250), CurrentWeight: decimal.NewFromInt(250),
	}
	require.NoError(t, sqlstore.New().CreateCattle(ctx, db, cattle))

	svc := NewService(db, sqlstore.New(), checker, nil)
	svc.now = func() time.Time { return start }
	return svc, cattle
}

func TestCreate(t *testing.T) {
	svc, cattle := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, operator, CreateInput{
		CattleID: cattle.ID,
		Symptoms: []string{"cough", " fever", "Cough", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, models.HealthActive, record.Status)
	assert.Equal(t, []string{"cough", "fever"}, record.Symptoms)
	assert.Equal(t, operator.UserID, record.UserID)
	assert.Equal(t, start, record.StartDate)

	got, err := svc.Get(ctx, operator, record.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cough", "fever"}, got.Symptoms)
	require.NotNil(t, got.Cattle)
	assert.Equal(t, "H-01", got.Cattle.Tag)

	_, err = svc.Create(ctx, operator, CreateInput{CattleID: "missing"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.Create(ctx, operator, CreateInput{CattleID: cattle.ID, Status: "healed"})
	assert.ErrorIs(t, err, models.ErrValidation)

	before := start.Add(-time.Hour)
	_, err = svc.Create(ctx, operator, CreateInput{CattleID: cattle.ID, EndDate: &before})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdate(t *testing.T) {
	svc, cattle := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, operator, CreateInput{CattleID: cattle.ID, Diagnosis: "BRD"})
	require.NoError(t, err)

	recovered := "recovered"
	end := start.AddDate(0, 0, 6)
	updated, err := svc.Update(ctx, operator, record.ID, UpdateInput{Status: &recovered, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, models.HealthRecovered, updated.Status)
	require.NotNil(t, updated.EndDate)
	assert.Equal(t, "BRD", updated.Diagnosis)

	early := start.AddDate(0, 0, -1)
	_, err = svc.Update(ctx, operator, record.ID, UpdateInput{EndDate: &early})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Update(ctx, operator, "missing", UpdateInput{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCattleHealthMetrics(t *testing.T) {
	svc, cattle := newTestService(t)
	ctx := context.Background()

	m, err := svc.CattleHealthMetrics(ctx, operator, cattle.ID)
	require.NoError(t, err)
	assert.Zero(t, m.TotalRecords)
	assert.True(t, m.HealthIndex.Equal(decimal.NewFromInt(100)))

	for _, status := range []string{"recovered", "active", "chronic"} {
		_, err := svc.Create(ctx, operator, CreateInput{CattleID: cattle.ID, Status: status})
		require.NoError(t, err)
	}

	m, err = svc.CattleHealthMetrics(ctx, operator, cattle.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalRecords)
	assert.Equal(t, 1, m.Recovered)
	assert.Equal(t, 1, m.Active)
	assert.Equal(t, 1, m.Chronic)
	assert.Equal(t, "33.33", m.HealthIndex.StringFixed(2))
}
