package authorization

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	enforcer, err := NewEnforcer(db)
	if err != nil {
		t.Fatalf("new enforcer: %v", err)
	}

	return NewService(Params{
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})
}

func TestStaffGrants(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	allowed := []string{ActionPledgeView, ActionPledgeUpdate, ActionPledgeCard}
	for _, action := range allowed {
		if err := svc.Authorize(ctx, "staff", ObjectPledge, action); err != nil {
			t.Fatalf("staff %s: %v", action, err)
		}
	}

	denied := []string{ActionPledgeVerify, ActionPledgeDeactivate, ActionPledgeExport}
	for _, action := range denied {
		if err := svc.Authorize(ctx, "staff", ObjectPledge, action); !errors.Is(err, ErrForbidden) {
			t.Fatalf("staff %s: want ErrForbidden, got %v", action, err)
		}
	}

	if err := svc.Authorize(ctx, "staff", ObjectAuditLog, ActionAuditLogView); !errors.Is(err, ErrForbidden) {
		t.Fatalf("staff audit_log.view: want ErrForbidden, got %v", err)
	}
}

func TestAdminInheritsStaffGrants(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	actions := []string{
		ActionPledgeView,
		ActionPledgeUpdate,
		ActionPledgeCard,
		ActionPledgeVerify,
		ActionPledgeDeactivate,
		ActionPledgeExport,
	}
	for _, action := range actions {
		if err := svc.Authorize(ctx, "admin", ObjectPledge, action); err != nil {
			t.Fatalf("admin %s: %v", action, err)
		}
	}

	if err := svc.Authorize(ctx, "admin", ObjectAuditLog, ActionAuditLogView); err != nil {
		t.Fatalf("admin audit_log.view: %v", err)
	}
}

func TestUnknownRoleIsDenied(t *testing.T) {
	svc := setupService(t)

	if err := svc.Authorize(context.Background(), "viewer", ObjectPledge, ActionPledgeView); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestBlankRoleIsRejected(t *testing.T) {
	svc := setupService(t)

	if err := svc.Authorize(context.Background(), "  ", ObjectPledge, ActionPledgeView); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("want ErrInvalidRole, got %v", err)
	}
}

func TestRoleIsCaseInsensitive(t *testing.T) {
	svc := setupService(t)

	if err := svc.Authorize(context.Background(), "Admin", ObjectPledge, ActionPledgeVerify); err != nil {
		t.Fatalf("mixed-case role: %v", err)
	}
}
