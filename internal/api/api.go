// Package api serves the course guide over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handlers binds HTTP requests to Guide operations.
type Handlers struct {
	guide  *courseguide.Guide
	logger *slog.Logger
}

func NewHandlers(g *courseguide.Guide, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{guide: g, logger: logger}
}

// NewRouter builds the engine with the /v1 routes, /healthz and /metrics
// backed by reg.
func NewRouter(g *courseguide.Guide, reg *prometheus.Registry, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	h := NewHandlers(g, logger)
	router.GET("/healthz", h.HandleHealth)
	if reg != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}
	RegisterRoutes(router.Group("/v1"), h)
	return router
}

// RegisterRoutes registers:
//
//	GET  /courses?domain=&level=&code=
//	GET  /courses/:code
//	GET  /courses/:code/prerequisites
//	GET  /courses/:code/path
//	GET  /courses/:code/similar?limit=
//	GET  /courses/:code/stats
//	GET  /domains/:domain/path
//	GET  /skills?skill=a&skill=b
//	GET  /students/:id/eligibility/:code
//	GET  /students/:id/recommendations?n=
//	GET  /students/:id/plan/:goal
//	GET  /students/:id/level
//	GET  /students/:id/competencies
//	POST /answer
//	POST /cache/invalidate?domain=
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	courses := rg.Group("/courses")
	courses.GET("", h.HandleSearch)
	courses.GET("/:code", h.HandleCourseInfo)
	courses.GET("/:code/prerequisites", h.HandlePrerequisites)
	courses.GET("/:code/path", h.HandleCoursePath)
	courses.GET("/:code/similar", h.HandleSimilar)
	courses.GET("/:code/stats", h.HandleStats)

	rg.GET("/domains/:domain/path", h.HandleLearningPath)
	rg.GET("/skills", h.HandleSkills)

	students := rg.Group("/students/:id")
	students.GET("/eligibility/:code", h.HandleEligibility)
	students.GET("/recommendations", h.HandleRecommend)
	students.GET("/plan/:goal", h.HandlePlan)
	students.GET("/level", h.HandleLevel)
	students.GET("/competencies", h.HandleCompetencies)

	rg.POST("/answer", h.HandleAnswer)
	rg.POST("/cache/invalidate", h.HandleInvalidate)
}

func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) HandleSearch(c *gin.Context) {
	var q courseguide.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	courses, err := h.guide.Search(c.Request.Context(), q)
	h.reply(c, courses, err)
}

func (h *Handlers) HandleCourseInfo(c *gin.Context) {
	course, err := h.guide.CourseInfo(c.Request.Context(), c.Param("code"))
	h.reply(c, course, err)
}

func (h *Handlers) HandlePrerequisites(c *gin.Context) {
	p, err := h.guide.Prerequisites(c.Request.Context(), c.Param("code"))
	h.reply(c, p, err)
}

func (h *Handlers) HandleCoursePath(c *gin.Context) {
	path, err := h.guide.CoursePath(c.Request.Context(), c.Param("code"))
	h.reply(c, path, err)
}

func (h *Handlers) HandleSimilar(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	courses, err := h.guide.Similar(c.Request.Context(), c.Param("code"), limit)
	h.reply(c, courses, err)
}

func (h *Handlers) HandleStats(c *gin.Context) {
	stats, err := h.guide.Stats(c.Request.Context(), c.Param("code"))
	h.reply(c, stats, err)
}

func (h *Handlers) HandleLearningPath(c *gin.Context) {
	path, err := h.guide.LearningPath(c.Request.Context(), c.Param("domain"))
	h.reply(c, path, err)
}

func (h *Handlers) HandleSkills(c *gin.Context) {
	courses, err := h.guide.Skills(c.Request.Context(), c.QueryArray("skill"))
	h.reply(c, courses, err)
}

func (h *Handlers) HandleEligibility(c *gin.Context) {
	el, err := h.guide.Eligibility(c.Request.Context(), c.Param("id"), c.Param("code"))
	h.reply(c, el, err)
}

func (h *Handlers) HandleRecommend(c *gin.Context) {
	n, ok := intQuery(c, "n")
	if !ok {
		return
	}
	recs, err := h.guide.Recommend(c.Request.Context(), c.Param("id"), n)
	h.reply(c, recs, err)
}

func (h *Handlers) HandlePlan(c *gin.Context) {
	plan, err := h.guide.PlanToGoal(c.Request.Context(), c.Param("id"), c.Param("goal"))
	h.reply(c, plan, err)
}

func (h *Handlers) HandleLevel(c *gin.Context) {
	level, err := h.guide.Level(c.Request.Context(), c.Param("id"))
	h.reply(c, gin.H{"student_id": c.Param("id"), "level": level}, err)
}

func (h *Handlers) HandleCompetencies(c *gin.Context) {
	comps, err := h.guide.Competencies(c.Request.Context(), c.Param("id"))
	h.reply(c, comps, err)
}

func (h *Handlers) HandleAnswer(c *gin.Context) {
	var req courseguide.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	resp, err := h.guide.Answer(c.Request.Context(), req)
	h.reply(c, resp, err)
}

func (h *Handlers) HandleInvalidate(c *gin.Context) {
	domain := c.Query("domain")
	h.guide.Reasoner().Invalidate(domain)
	c.JSON(http.StatusOK, h.guide.Reasoner().CacheStats())
}

func (h *Handlers) reply(c *gin.Context, body any, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, body)
	case errors.Is(err, internalerr.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, internalerr.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("api: request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// intQuery reads an optional integer query parameter, replying 400 when it
// is malformed.
func intQuery(c *gin.Context, name string) (int, bool) {
	s := c.Query(name)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: name + " must be an integer"})
		return 0, false
	}
	return n, true
}
