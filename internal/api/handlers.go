package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/jobpipe/internal/model"
)

type runRequest struct {
	URLs []string `json:"urls" binding:"required,min=1,dive,url"`
}

type jobsQuery struct {
	Status string `form:"status"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

type jobsResponse struct {
	Jobs   []model.Job `json:"jobs"`
	Count  int         `json:"count"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

func (s *Server) status(c *gin.Context) {
	counts, err := s.svc.CountByStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "counting jobs: " + err.Error()})
		return
	}

	byStatus := make(map[string]int, len(counts))
	for st, n := range counts {
		byStatus[string(st)] = n
	}
	report := s.svc.Status()
	c.JSON(http.StatusOK, gin.H{
		"orchestrator": report.Orchestrator,
		"agents":       report.Agents,
		"jobs":         byStatus,
	})
}

func (s *Server) listJobs(c *gin.Context) {
	var req jobsQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}

	q := model.JobQuery{Limit: req.Limit, Offset: req.Offset}
	if q.Limit == 0 {
		q.Limit = model.DefaultJobQueryLimit
	}
	if req.Status != "" {
		st, err := model.ParseJobStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		q.Status = &st
	}

	jobs, err := s.svc.ListJobs(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing jobs: " + err.Error()})
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	c.JSON(http.StatusOK, jobsResponse{Jobs: jobs, Count: len(jobs), Limit: q.Limit, Offset: q.Offset})
}

func (s *Server) createRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	res, err := s.svc.RunPipeline(c.Request.Context(), req.URLs)
	if err != nil {
		s.logger.Error("pipeline run failed", "error", err)
		if res == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, res)
		return
	}
	c.JSON(http.StatusOK, res)
}
