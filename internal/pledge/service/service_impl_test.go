package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/sightcare/netra/internal/audit/domain"
	"github.com/sightcare/netra/internal/clock"
	"github.com/sightcare/netra/internal/pledge/domain"
	"github.com/sightcare/netra/internal/pledge/repository"
)

func TestCreatePledgeDefaultsAndReference(t *testing.T) {
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	svc, _, _, audit := setupPledgeService(t, now)

	dob := time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC)
	pledge, err := svc.Create(context.Background(), domain.CreatePledgeRequest{
		FullName:     "  Asha Menon ",
		Mobile:       "9876543210",
		DateOfBirth:  &dob,
		City:         "Kochi",
		State:        "Kerala",
		ConsentGiven: true,
	})
	if err != nil {
		t.Fatalf("create pledge: %v", err)
	}

	if pledge.ReferenceNumber != "NEB-2026-000001" {
		t.Fatalf("expected reference NEB-2026-000001, got %s", pledge.ReferenceNumber)
	}
	if pledge.FullName != "Asha Menon" {
		t.Fatalf("expected trimmed name, got %q", pledge.FullName)
	}
	if pledge.Country != "India" || pledge.OrgansConsented != "Eyes" || pledge.Source != "web" {
		t.Fatalf("expected defaults, got country=%s organs=%s source=%s", pledge.Country, pledge.OrgansConsented, pledge.Source)
	}
	if pledge.Age == nil || *pledge.Age != 36 {
		t.Fatalf("expected age 36 derived from date of birth, got %v", pledge.Age)
	}
	if !pledge.IsActive || pledge.IsVerified {
		t.Fatalf("expected active unverified pledge, got %+v", pledge)
	}
	if got := audit.last(); got != "pledge.created" {
		t.Fatalf("expected pledge.created audit entry, got %q", got)
	}
}

func TestCreatePledgeValidation(t *testing.T) {
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	svc, _, _, _ := setupPledgeService(t, now)

	_, err := svc.Create(context.Background(), domain.CreatePledgeRequest{Mobile: "9876543210", ConsentGiven: true})
	if !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	_, err = svc.Create(context.Background(), domain.CreatePledgeRequest{FullName: "Asha", Mobile: "12ab", ConsentGiven: true})
	if !errors.Is(err, domain.ErrInvalidMobile) {
		t.Fatalf("expected ErrInvalidMobile, got %v", err)
	}

	_, err = svc.Create(context.Background(), domain.CreatePledgeRequest{FullName: "Asha", Mobile: "9876543210"})
	if !errors.Is(err, domain.ErrConsentRequired) {
		t.Fatalf("expected ErrConsentRequired, got %v", err)
	}
}

func TestCreatePledgeSequencePerYear(t *testing.T) {
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	svc, _, _, _ := setupPledgeService(t, now)

	first := mustCreate(t, svc, "Asha Menon")
	second := mustCreate(t, svc, "Ravi Kumar")

	if first.ReferenceNumber != "NEB-2026-000001" || second.ReferenceNumber != "NEB-2026-000002" {
		t.Fatalf("unexpected references: %s, %s", first.ReferenceNumber, second.ReferenceNumber)
	}
}

func TestVerifyPledge(t *testing.T) {
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	svc, _, fake, audit := setupPledgeService(t, now)

	pledge := mustCreate(t, svc, "Asha Menon")
	fake.Advance(time.Hour)

	verified, err := svc.Verify(context.Background(), pledge.ID.String(), "42")
	if err != nil {
		t.Fatalf("verify pledge: %v", err)
	}
	if !verified.IsVerified || verified.VerifiedAt == nil {
		t.Fatalf("expected verified pledge, got %+v", verified)
	}
	if verified.VerifiedBy == nil || *verified.VerifiedBy != "42" {
		t.Fatalf("expected verified_by 42, got %v", verified.VerifiedBy)
	}
	if got := audit.last(); got != "pledge.verified" {
		t.Fatalf("expected pledge.verified audit entry, got %q", got)
	}

	_, err = svc.Verify(context.Background(), pledge.ID.String(), "42")
	if !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestDeactivatePledge(t *testing.T) {
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	svc, _, _, _ := setupPledgeService(t, now)

	pledge := mustCreate(t, svc, "Asha Menon")

	if err := svc.Deactivate(context.Background(), pledge.ID.String()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// The public lookup no longer resolves a deactivated pledge.
	_, err := svc.GetByReference(context.Background(), pledge.ReferenceNumber)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after deactivation, got %v", err)
	}

	err = svc.Deactivate(context.Background(), pledge.ID.String())
	if !errors.Is(err, domain.ErrInactive) {
		t.Fatalf("expected ErrInactive on second deactivation, got %v", err)
	}
}

func TestUpdatePledge(t *testing.T) {
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	svc, _, _, audit := setupPledgeService(t, now)

	pledge := mustCreate(t, svc, "Asha Menon")

	badMobile := "12ab"
	_, err := svc.Update(context.Background(), domain.UpdatePledgeRequest{ID: pledge.ID.String(), Mobile: &badMobile})
	if !errors.Is(err, domain.ErrInvalidMobile) {
		t.Fatalf("expected ErrInvalidMobile, got %v", err)
	}

	city := "Thrissur"
	updated, err := svc.Update(context.Background(), domain.UpdatePledgeRequest{ID: pledge.ID.String(), City: &city})
	if err != nil {
		t.Fatalf("update pledge: %v", err)
	}
	if updated.City != "Thrissur" {
		t.Fatalf("expected city Thrissur, got %s", updated.City)
	}
	if got := audit.last(); got != "pledge.updated" {
		t.Fatalf("expected pledge.updated audit entry, got %q", got)
	}

	// No fields supplied means nothing to write.
	same, err := svc.Update(context.Background(), domain.UpdatePledgeRequest{ID: pledge.ID.String()})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if !same.UpdatedAt.Equal(updated.UpdatedAt) {
		t.Fatalf("expected untouched timestamp on empty update")
	}
}

func TestListPledges(t *testing.T) {
	now := time.Date(2026, time.August, 29, 10, 0, 0, 0, time.UTC)
	svc, _, fake, _ := setupPledgeService(t, now)

	mustCreate(t, svc, "Asha Menon")
	fake.Advance(24 * time.Hour)
	mustCreate(t, svc, "Ravi Kumar")
	fake.Advance(24 * time.Hour)
	newest := mustCreate(t, svc, "Meera Nair")

	resp, err := svc.List(context.Background(), domain.ListPledgeRequest{PageSize: 10})
	if err != nil {
		t.Fatalf("list pledges: %v", err)
	}
	if len(resp.Pledges) != 3 {
		t.Fatalf("expected 3 pledges, got %d", len(resp.Pledges))
	}
	if resp.Pledges[0].ID != newest.ID {
		t.Fatalf("expected newest pledge first, got %s", resp.Pledges[0].FullName)
	}
	if resp.HasMore {
		t.Fatalf("expected no further pages")
	}

	page, err := svc.List(context.Background(), domain.ListPledgeRequest{PageSize: 2})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(page.Pledges) != 2 || !page.HasMore || page.NextPageToken == "" {
		t.Fatalf("expected a full page with a next token, got %d items hasMore=%v", len(page.Pledges), page.HasMore)
	}
}

func TestListPledgesSearch(t *testing.T) {
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	svc, _, _, _ := setupPledgeService(t, now)

	mustCreate(t, svc, "Asha Menon")
	mustCreate(t, svc, "Ravi Kumar")

	resp, err := svc.List(context.Background(), domain.ListPledgeRequest{Search: "menon"})
	if err != nil {
		t.Fatalf("search pledges: %v", err)
	}
	if len(resp.Pledges) != 1 || resp.Pledges[0].FullName != "Asha Menon" {
		t.Fatalf("unexpected search result: %+v", resp.Pledges)
	}
}

func TestExportPledges(t *testing.T) {
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	svc, _, _, audit := setupPledgeService(t, now)

	first := mustCreate(t, svc, "Asha Menon")
	second := mustCreate(t, svc, "Ravi Kumar")
	if err := svc.Deactivate(context.Background(), second.ID.String()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	records, err := svc.Export(context.Background(), domain.ListFilter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 exported record, got %d", len(records))
	}
	if records[0].ReferenceNumber != first.ReferenceNumber {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if records[0].CreatedAt != now.Format(time.RFC3339) {
		t.Fatalf("unexpected created_at: %s", records[0].CreatedAt)
	}
	if got := audit.last(); got != "pledge.exported" {
		t.Fatalf("expected pledge.exported audit entry, got %q", got)
	}
}

func setupPledgeService(t *testing.T, now time.Time) (domain.Service, *gorm.DB, *clock.FakeClock, *auditRecorder) {
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
	if err := db.AutoMigrate(&domain.Pledge{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	fake := clock.NewFakeClock(now)
	audit := &auditRecorder{}
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		GenID: node,
		Repo:  repository.Provide(),
		Audit: audit,
	})
	return svc, db, fake, audit
}

func mustCreate(t *testing.T, svc domain.Service, name string) domain.Pledge {
	t.Helper()
	pledge, err := svc.Create(context.Background(), domain.CreatePledgeRequest{
		FullName:     name,
		Mobile:       "9876543210",
		City:         "Kochi",
		State:        "Kerala",
		ConsentGiven: true,
	})
	if err != nil {
		t.Fatalf("create pledge %s: %v", name, err)
	}
	return pledge
}

type auditRecorder struct {
	mu      sync.Mutex
	actions []string
}

func (a *auditRecorder) Record(ctx context.Context, action, targetType, targetID string, metadata map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
	return nil
}

func (a *auditRecorder) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	return auditdomain.ListAuditLogResponse{}, nil
}

func (a *auditRecorder) last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.actions) == 0 {
		return ""
	}
	return a.actions[len(a.actions)-1]
}
