package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) DownloadDonorCard(c *gin.Context) {
	pledge, err := s.pledgeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !pledge.IsActive {
		AbortWithError(c, ErrNotFound)
		return
	}

	reader, filename, err := s.cards.RenderDonorCard(c.Request.Context(), pledge)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
