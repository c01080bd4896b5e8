package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/repos"
	"github.com/brightpath/wellbeing-worker/internal/services"
)

type ClassificationHandler struct {
	log        *logger.Logger
	daily      *services.DailyClassificationService
	weekly     *services.WeeklyClassificationService
	results    repos.StudentClassificationRepo
	weeklyRepo repos.StudentWeeklyClassificationRepo
}

func NewClassificationHandler(
	daily *services.DailyClassificationService,
	weekly *services.WeeklyClassificationService,
	results repos.StudentClassificationRepo,
	weeklyRepo repos.StudentWeeklyClassificationRepo,
	baseLog *logger.Logger,
) *ClassificationHandler {
	return &ClassificationHandler{
		log:        baseLog.With("handler", "ClassificationHandler"),
		daily:      daily,
		weekly:     weekly,
		results:    results,
		weeklyRepo: weeklyRepo,
	}
}

// RunDaily triggers today's classification run. Optional ?top_k= controls how
// many labels the model reports per student.
func (h *ClassificationHandler) RunDaily(c *gin.Context) {
	topK := 1
	if raw := c.Query("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			RespondError(c, http.StatusBadRequest, "INVALID_TOP_K", errors.New("top_k must be a positive integer"))
			return
		}
		topK = parsed
	}

	results, err := h.daily.ClassifyToday(c.Request.Context(), topK)
	if err != nil {
		h.log.Error("daily classification run failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "DAILY_RUN_FAILED", err)
		return
	}
	RespondOK(c, gin.H{"count": len(results), "results": results})
}

// RunWeekly triggers the trailing-window weekly evaluation. Optional ?days=
// overrides the default 7-day window.
func (h *ClassificationHandler) RunWeekly(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			RespondError(c, http.StatusBadRequest, "INVALID_DAYS", errors.New("days must be a positive integer"))
			return
		}
		days = parsed
	}

	results, err := h.weekly.RunTrailingWeek(c.Request.Context(), days)
	if err != nil {
		h.log.Error("weekly classification run failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "WEEKLY_RUN_FAILED", err)
		return
	}
	RespondOK(c, gin.H{"count": len(results), "results": results})
}

// LatestForStudent returns the student's most recent daily classification.
func (h *ClassificationHandler) LatestForStudent(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("studentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_STUDENT_ID", err)
		return
	}

	latest, err := h.results.GetLatestForStudent(c.Request.Context(), nil, studentID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "FETCH_FAILED", err)
		return
	}
	if latest == nil {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", errors.New("no classification for student"))
		return
	}
	RespondOK(c, latest)
}

// WeeklyForStudent returns the student's weekly verdict history, most recent
// first. Optional ?limit= caps the page size (default 12).
func (h *ClassificationHandler) WeeklyForStudent(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("studentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_STUDENT_ID", err)
		return
	}
	limit := 12
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			RespondError(c, http.StatusBadRequest, "INVALID_LIMIT", errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	rows, err := h.weeklyRepo.ListForStudent(c.Request.Context(), nil, studentID, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "FETCH_FAILED", err)
		return
	}
	RespondOK(c, gin.H{"count": len(rows), "results": rows})
}
