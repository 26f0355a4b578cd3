package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	analyticsdomain "github.com/sightcare/netra/internal/analytics/domain"
)

func (s *Server) recordStats(c *gin.Context, report string) {
	if s.obsMetrics != nil {
		s.obsMetrics.RecordStatsQuery(c.Request.Context(), report)
	}
}

func (s *Server) StatsSummary(c *gin.Context) {
	s.recordStats(c, "summary")

	start, err := parseOptionalTime(c.Query("start_date"), false)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	end, err := parseOptionalTime(c.Query("end_date"), true)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	summary, err := s.analyticsSvc.SummaryStats(c.Request.Context(), analyticsdomain.SummaryFilter{
		Start: start,
		End:   end,
		State: c.Query("state"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// StatsTrends is the granularity-parameterized series endpoint. An unknown
// period is a 400, not an empty series.
func (s *Server) StatsTrends(c *gin.Context) {
	s.recordStats(c, "trends")

	period, err := analyticsdomain.ParsePeriod(c.DefaultQuery("period", string(analyticsdomain.PeriodDaily)))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	series, err := s.analyticsSvc.TemporalTrends(c.Request.Context(), analyticsdomain.TrendRequest{
		Period: period,
		Limit:  limit,
		State:  c.Query("state"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (s *Server) StatsWeekly(c *gin.Context) {
	s.recordStats(c, "weekly")
	s.trendResponse(c, analyticsdomain.PeriodDaily, 7)
}

func (s *Server) StatsMonthly(c *gin.Context) {
	s.recordStats(c, "monthly")
	s.trendResponse(c, analyticsdomain.PeriodMonthly, 12)
}

func (s *Server) StatsYearly(c *gin.Context) {
	s.recordStats(c, "yearly")
	s.trendResponse(c, analyticsdomain.PeriodYearly, 0)
}

func (s *Server) trendResponse(c *gin.Context, period analyticsdomain.Period, limit int) {
	series, err := s.analyticsSvc.TemporalTrends(c.Request.Context(), analyticsdomain.TrendRequest{
		Period: period,
		Limit:  limit,
		State:  c.Query("state"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"labels": series.Labels,
		"data":   series.Data,
	})
}

func (s *Server) StatsHistorical(c *gin.Context) {
	s.recordStats(c, "historical")

	years, err := parseOptionalInt(c.Query("years"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	counts, err := s.analyticsSvc.HistoricalComparison(c.Request.Context(), years)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	labels := make([]string, 0, len(counts))
	data := make([]int64, 0, len(counts))
	for _, yc := range counts {
		labels = append(labels, yearLabel(yc.Year))
		data = append(data, yc.Count)
	}
	c.JSON(http.StatusOK, gin.H{
		"labels": labels,
		"data":   data,
	})
}

func (s *Server) StatsComparative(c *gin.Context) {
	s.recordStats(c, "comparative")

	metrics, err := s.analyticsSvc.ComparativeMetrics(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (s *Server) StatsGrowth(c *gin.Context) {
	s.recordStats(c, "growth")

	growth, err := s.analyticsSvc.GrowthMetrics(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, growth)
}

func (s *Server) StatsSources(c *gin.Context) {
	s.recordStats(c, "sources")

	breakdown, err := s.analyticsSvc.SourceDistribution(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (s *Server) StatsLanguages(c *gin.Context) {
	s.recordStats(c, "languages")

	languages, err := s.analyticsSvc.LanguageDistribution(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"languages": languages})
}

func (s *Server) StatsConsent(c *gin.Context) {
	s.recordStats(c, "consent")

	organs, err := s.analyticsSvc.MedicalConsentStats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organs": organs})
}

func (s *Server) StatsDemographics(c *gin.Context) {
	s.recordStats(c, "demographics")

	insights, err := s.analyticsSvc.DemographicInsights(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"age": gin.H{
			"labels": insights.Age.Labels,
			"data":   insights.Age.Data,
		},
		"gender": gin.H{
			"labels": insights.Gender.Labels,
			"data":   insights.Gender.Data,
		},
	})
}

func (s *Server) StatsHourly(c *gin.Context) {
	s.recordStats(c, "hourly")

	peak, err := s.analyticsSvc.PeakActivity(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"labels": peak.Hourly.Labels,
		"data":   peak.Hourly.Data,
	})
}

func (s *Server) StatsPeak(c *gin.Context) {
	s.recordStats(c, "peak")

	peak, err := s.analyticsSvc.PeakActivity(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, peak)
}

// StatsStates keeps the historical pair-array shape the dashboard charts
// consume: [["Kerala", 120], ["Tamil Nadu", 80], ...].
func (s *Server) StatsStates(c *gin.Context) {
	s.recordStats(c, "states")

	topN, err := parseOptionalInt(c.Query("top"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dist, err := s.analyticsSvc.GeographicDistribution(c.Request.Context(), topN)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pairs := make([][]any, 0, len(dist.TopStates))
	for _, sc := range dist.TopStates {
		pairs = append(pairs, []any{sc.State, sc.Count})
	}
	c.JSON(http.StatusOK, gin.H{"states": pairs})
}

func (s *Server) StatsGeographic(c *gin.Context) {
	s.recordStats(c, "geographic")

	topN, err := parseOptionalInt(c.Query("top"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dist, err := s.analyticsSvc.GeographicDistribution(c.Request.Context(), topN)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dist)
}

func (s *Server) StatsDistricts(c *gin.Context) {
	s.recordStats(c, "districts")

	districts, err := s.analyticsSvc.DistrictStats(c.Request.Context(), c.Param("state"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"districts": districts})
}
