package authz

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

//go:embed model.conf
var modelText string

const (
	ObjectCattle    = "cattle"
	ObjectHealth    = "health"
	ObjectFeed      = "feed"
	ObjectSales     = "sales"
	ObjectDashboard = "dashboard"
	ObjectReport    = "report"
)

const (
	ActionView     = "view"
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionWeigh    = "weigh"
	ActionPurchase = "purchase"
	ActionUse      = "use"
	ActionPublish  = "publish"
)

// Checker is the authorization surface the services depend on.
type Checker interface {
	Authorize(caller models.Caller, object, action string) error
}

// Authorizer evaluates role policies with an in-process casbin enforcer.
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
	logger   *zap.Logger
}

// New builds the enforcer from the embedded model and seeds the role policies.
func New(logger *zap.Logger) (*Authorizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("parse authorization model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, fmt.Errorf("seed policies: %w", err)
	}
	enforcer.BuildRoleLinks()

	return &Authorizer{enforcer: enforcer, logger: logger}, nil
}

// Authorize returns ErrUnauthenticated for an unusable caller and ErrForbidden when the
// caller's role does not grant the action on the object.
func (a *Authorizer) Authorize(caller models.Caller, object, action string) error {
	if !caller.Valid() {
		return models.ErrUnauthenticated
	}

	allowed, err := a.enforcer.Enforce(string(caller.Role), object, action)
	if err != nil {
		return fmt.Errorf("enforce %s.%s: %w", object, action, err)
	}
	if !allowed {
		a.logger.Info("authorization denied",
			zap.String("user_id", caller.UserID),
			zap.String("role", string(caller.Role)),
			zap.String("object", object),
			zap.String("action", action))
		return models.ErrForbidden
	}
	return nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	admin := string(models.RoleAdmin)
	manager := string(models.RoleManager)
	operator := string(models.RoleOperator)

	policies := [][]string{
		{admin, "*", "*"},

		{manager, ObjectCattle, "*"},
		{manager, ObjectHealth, "*"},
		{manager, ObjectFeed, "*"},
		{manager, ObjectSales, "*"},
		{manager, ObjectDashboard, "*"},
		{manager, ObjectReport, "*"},

		// Operators only work the pens: animals and their health.
		{operator, ObjectCattle, ActionView},
		{operator, ObjectCattle, ActionCreate},
		{operator, ObjectCattle, ActionUpdate},
		{operator, ObjectCattle, ActionWeigh},
		{operator, ObjectHealth, ActionView},
		{operator, ObjectHealth, ActionCreate},
		{operator, ObjectHealth, ActionUpdate},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	_, err := enforcer.AddGroupingPolicy(admin, manager)
	return err
}

var _ Checker = (*Authorizer)(nil)
