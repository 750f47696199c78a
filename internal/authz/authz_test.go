package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

func TestAuthorize(t *testing.T) {
	a, err := New(nil)
	require.NoError(t, err)

	admin := models.Caller{UserID: "u-admin", Role: models.RoleAdmin}
	manager := models.Caller{UserID: "u-manager", Role: models.RoleManager}
	operator := models.Caller{UserID: "u-operator", Role: models.RoleOperator}

	cases := []struct {
		name    string
		caller  models.Caller
		object  string
		action  string
		wantErr error
	}{
		{"admin publishes reports", admin, ObjectReport, ActionPublish, nil},
		{"admin adjusts feed", admin, ObjectFeed, ActionUpdate, nil},
		{"manager records sale", manager, ObjectSales, ActionCreate, nil},
		{"manager views dashboard", manager, ObjectDashboard, ActionView, nil},
		{"operator weighs cattle", operator, ObjectCattle, ActionWeigh, nil},
		{"operator records treatment", operator, ObjectHealth, ActionCreate, nil},
		{"operator cannot purchase cattle", operator, ObjectCattle, ActionPurchase, models.ErrForbidden},
		{"operator cannot use feed", operator, ObjectFeed, ActionUse, models.ErrForbidden},
		{"operator cannot sell", operator, ObjectSales, ActionCreate, models.ErrForbidden},
		{"operator cannot view dashboard", operator, ObjectDashboard, ActionView, models.ErrForbidden},
		{"missing user id", models.Caller{Role: models.RoleAdmin}, ObjectCattle, ActionView, models.ErrUnauthenticated},
		{"unknown role", models.Caller{UserID: "u1", Role: "VET"}, ObjectCattle, ActionView, models.ErrUnauthenticated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := a.Authorize(tc.caller, tc.object, tc.action)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSystemCallerIsAuthorizedForScheduledWork(t *testing.T) {
	a, err := New(nil)
	require.NoError(t, err)

	assert.NoError(t, a.Authorize(models.SystemCaller, ObjectDashboard, ActionView))
	assert.NoError(t, a.Authorize(models.SystemCaller, ObjectFeed, ActionView))
}
