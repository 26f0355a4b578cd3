package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/sightcare/netra/internal/audit/domain"
)

//go:embed model.conf
var modelText string

const (
	ObjectPledge   = "pledge"
	ObjectAuditLog = "audit_log"
)

const (
	ActionPledgeView       = "pledge.view"
	ActionPledgeUpdate     = "pledge.update"
	ActionPledgeVerify     = "pledge.verify"
	ActionPledgeDeactivate = "pledge.deactivate"
	ActionPledgeExport     = "pledge.export"
	ActionPledgeCard       = "pledge.card"

	ActionAuditLogView = "audit_log.view"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role, object, action string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return ErrInvalidRole
	}
	object = strings.TrimSpace(object)
	action = strings.TrimSpace(action)

	allowed, err := s.enforcer.Enforce("role:"+role, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, role, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) auditDenied(ctx context.Context, role, object, action string) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.Record(ctx, "authorization.denied", "authorization", "", map[string]any{
		"role":   role,
		"object": object,
		"action": action,
	}); err != nil {
		s.log.Warn("audit write failed", zap.String("action", "authorization.denied"), zap.Error(err))
	}
}

// seedPolicies installs the default grants. Staff handle day-to-day record
// keeping; admins additionally verify, deactivate, export and read the audit
// trail. Admin inherits every staff grant through the role link.
func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:staff", ObjectPledge, ActionPledgeView},
		{"role:staff", ObjectPledge, ActionPledgeUpdate},
		{"role:staff", ObjectPledge, ActionPledgeCard},

		{"role:admin", ObjectPledge, ActionPledgeVerify},
		{"role:admin", ObjectPledge, ActionPledgeDeactivate},
		{"role:admin", ObjectPledge, ActionPledgeExport},
		{"role:admin", ObjectAuditLog, ActionAuditLogView},
	}
	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	if _, err := enforcer.AddGroupingPolicy("role:admin", "role:staff"); err != nil {
		return err
	}
	return nil
}
