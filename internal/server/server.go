// Package server exposes the latest results file over HTTP.
package server

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"school-job-scout/internal/report"
	"school-job-scout/internal/scraper"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type handler struct {
	resultsPath string
	logger      *zap.Logger
}

// NewRouter serves /health, /api/jobs and /api/jobs/new. Both job endpoints
// accept ?district= to keep jobs whose district contains the value.
func NewRouter(resultsPath string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{resultsPath: resultsPath, logger: logger.Named("server")}

	r := gin.New()
	r.Use(gin.Recovery(), h.accessLog)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "school-job-scout API is running!",
			"status":  "healthy",
		})
	})

	api := r.Group("/api")
	api.GET("/jobs", h.jobs)
	api.GET("/jobs/new", h.newJobs)
	return r
}

func (h *handler) load(c *gin.Context) (report.RunResults, bool) {
	res, err := report.ReadRunResults(h.resultsPath)
	if errors.Is(err, fs.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no results yet"})
		return res, false
	}
	if err != nil {
		h.logger.Error("❌ failed to read results", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "results unreadable"})
		return res, false
	}
	return res, true
}

func (h *handler) jobs(c *gin.Context) {
	res, ok := h.load(c)
	if !ok {
		return
	}
	jobs := byDistrict(res.Jobs, c.Query("district"))
	c.JSON(http.StatusOK, gin.H{
		"scraped_at": res.ScrapedAt,
		"total_jobs": len(jobs),
		"new_jobs":   res.NewJobs,
		"jobs":       jobs,
	})
}

func (h *handler) newJobs(c *gin.Context) {
	res, ok := h.load(c)
	if !ok {
		return
	}
	jobs := byDistrict(res.NewSubset(), c.Query("district"))
	c.JSON(http.StatusOK, gin.H{
		"scraped_at": res.ScrapedAt,
		"new_jobs":   len(jobs),
		"jobs":       jobs,
	})
}

func byDistrict(jobs []scraper.Job, q string) []scraper.Job {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return jobs
	}
	out := []scraper.Job{}
	for _, j := range jobs {
		if strings.Contains(strings.ToLower(j.District), q) {
			out = append(out, j)
		}
	}
	return out
}

func (h *handler) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.logger.Info("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("took", time.Since(start)))
}
