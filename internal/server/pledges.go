package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/sightcare/netra/internal/audit/domain"
	"github.com/sightcare/netra/internal/auditctx"
	pledgedomain "github.com/sightcare/netra/internal/pledge/domain"
)

func (s *Server) CreatePledge(c *gin.Context) {
	var req pledgedomain.CreatePledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := auditctx.WithActorType(c.Request.Context(), string(auditdomain.ActorTypePublic))
	pledge, err := s.pledgeSvc.Create(ctx, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reference_number": pledge.ReferenceNumber,
		"pledge":           pledge,
	})
}

// VerifyPledgeLookup is the public endpoint behind the donor card QR code. It
// deliberately exposes only a confirmation subset of the record.
func (s *Server) VerifyPledgeLookup(c *gin.Context) {
	pledge, err := s.pledgeSvc.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reference_number": pledge.ReferenceNumber,
		"full_name":        pledge.FullName,
		"organs_consented": pledge.OrgansConsented,
		"is_verified":      pledge.IsVerified,
		"pledged_on":       pledge.CreatedAt.UTC().Format(dateOnlyLayout),
	})
}

func (s *Server) ListPledges(c *gin.Context) {
	verified, err := parseOptionalBool(c.Query("verified"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	createdFrom, err := parseOptionalTime(c.Query("created_from"), false)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	createdTo, err := parseOptionalTime(c.Query("created_to"), true)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	pageSize, err := parseOptionalInt(c.Query("page_size"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pledgeSvc.List(c.Request.Context(), pledgedomain.ListPledgeRequest{
		PageToken:   c.Query("page_token"),
		PageSize:    int32(pageSize),
		State:       c.Query("state"),
		City:        c.Query("city"),
		Source:      c.Query("source"),
		Verified:    verified,
		Active:      active,
		Search:      c.Query("q"),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetPledge(c *gin.Context) {
	pledge, err := s.pledgeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pledge)
}

func (s *Server) UpdatePledge(c *gin.Context) {
	var req pledgedomain.UpdatePledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	pledge, err := s.pledgeSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pledge)
}

func (s *Server) VerifyPledge(c *gin.Context) {
	verifiedBy := ""
	if userID, ok := c.Get(contextUserIDKey); ok {
		if str, ok := userID.(string); ok {
			verifiedBy = str
		}
	}

	pledge, err := s.pledgeSvc.Verify(c.Request.Context(), c.Param("id"), verifiedBy)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pledge)
}

func (s *Server) DeactivatePledge(c *gin.Context) {
	if err := s.pledgeSvc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ExportPledges(c *gin.Context) {
	verified, err := parseOptionalBool(c.Query("verified"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	createdFrom, err := parseOptionalTime(c.Query("created_from"), false)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	createdTo, err := parseOptionalTime(c.Query("created_to"), true)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	records, err := s.pledgeSvc.Export(c.Request.Context(), pledgedomain.ListFilter{
		State:       strings.TrimSpace(c.Query("state")),
		Verified:    verified,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record_count": len(records),
		"records":      records,
	})
}
