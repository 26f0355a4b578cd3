package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	authdomain "github.com/sightcare/netra/internal/auth/domain"
	"github.com/sightcare/netra/internal/authorization"
)

type fakeAuthzService struct {
	err   error
	calls []string
}

func (f *fakeAuthzService) Authorize(ctx context.Context, role, object, action string) error {
	_ = ctx
	f.calls = append(f.calls, role+" "+object+" "+action)
	return f.err
}

func setSessionUser(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextUserKey, authdomain.User{Role: role})
		c.Next()
	}
}

func capabilityRouter(srv *Server, pre gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	handlers := []gin.HandlerFunc{}
	if pre != nil {
		handlers = append(handlers, pre)
	}
	handlers = append(handlers,
		srv.RequireCapability(authorization.ObjectPledge, authorization.ActionPledgeVerify),
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) },
	)
	router.POST("/admin/pledges/:id/verify", handlers...)
	return router
}

func TestRequireCapabilityAllows(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authzSvc := &fakeAuthzService{}
	router := capabilityRouter(&Server{authzSvc: authzSvc}, setSessionUser("admin"))

	req := httptest.NewRequest(http.MethodPost, "/admin/pledges/7/verify", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(authzSvc.calls) != 1 || authzSvc.calls[0] != "admin pledge pledge.verify" {
		t.Fatalf("unexpected authorize calls: %v", authzSvc.calls)
	}
}

func TestRequireCapabilityDenies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authzSvc := &fakeAuthzService{err: authorization.ErrForbidden}
	router := capabilityRouter(&Server{authzSvc: authzSvc}, setSessionUser("staff"))

	req := httptest.NewRequest(http.MethodPost, "/admin/pledges/7/verify", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestRequireCapabilityWithoutSessionUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := capabilityRouter(&Server{authzSvc: &fakeAuthzService{}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/pledges/7/verify", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestRequireCapabilityWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := capabilityRouter(&Server{}, setSessionUser("admin"))

	req := httptest.NewRequest(http.MethodPost, "/admin/pledges/7/verify", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}
