// Package handler exposes the attendance service over HTTP.
package handler

import (
	"errors"
	"log"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"attendify/internal/attendance"
	"attendify/internal/auth"
	"attendify/internal/model"
	"attendify/internal/stats"
)

// TokenIssuer mints a local access token. It is nil when tokens come from an
// external identity provider.
type TokenIssuer func(name string) (auth.Token, error)

// Handler holds the dependencies of the HTTP routes.
type Handler struct {
	Service *attendance.Service
	Catalog []string
	Issue   TokenIssuer
}

// RegisterValidations installs the model's custom tags on gin's validator.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator is not go-playground/validator")
	}
	return model.RegisterValidations(v)
}

// Register mounts public routes on r and owner routes behind requireOwner.
func (h *Handler) Register(r gin.IRouter, requireOwner gin.HandlerFunc, extra ...gin.HandlerFunc) {
	r.POST("/v1/auth/token", h.issueToken)
	r.GET("/v1/catalog/subjects", h.catalog)

	v1 := r.Group("/v1", append([]gin.HandlerFunc{requireOwner}, extra...)...)

	v1.GET("/subjects", h.listSubjects)
	v1.POST("/subjects", h.addSubject)
	v1.PATCH("/subjects/:id", h.updateSubject)
	v1.DELETE("/subjects/:id", h.deleteSubject)

	v1.GET("/timetable", h.listTimetable)
	v1.POST("/timetable", h.addTimetableEntry)
	v1.GET("/timetable/current", h.currentClass)
	v1.PATCH("/timetable/:id", h.updateTimetableEntry)
	v1.DELETE("/timetable/:id", h.deleteTimetableEntry)

	v1.GET("/attendance", h.listAttendance)
	v1.POST("/attendance", h.addAttendance)
	v1.POST("/attendance/bulk", h.addBulkAttendance)
	v1.PATCH("/attendance/:id", h.updateAttendance)
	v1.DELETE("/attendance/:id", h.deleteAttendance)

	v1.GET("/calendar/:date", h.calendar)
	v1.POST("/calendar/:date/mark", h.markDay)

	v1.GET("/stats", h.stats)
	v1.GET("/predictions", h.predictions)
	v1.GET("/dashboard", h.dashboard)
	v1.GET("/prompt", h.prompt)
}

// fail maps service errors onto status codes.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrTimeConflict), errors.Is(err, model.ErrDuplicateAttendance):
		status = http.StatusConflict
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrEndBeforeStart),
		errors.Is(err, model.ErrUnknownSubject), errors.Is(err, model.ErrNoClasses):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) issueToken(c *gin.Context) {
	if h.Issue == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sign in with your identity provider"})
		return
	}
	var req struct {
		Name string `json:"name" binding:"max=120"`
	}
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	tok, err := h.Issue(req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tok)
}

func (h *Handler) catalog(c *gin.Context) {
	names := h.Catalog
	if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
		names = slices.DeleteFunc(slices.Clone(names), func(n string) bool {
			return !strings.Contains(strings.ToLower(n), q)
		})
	}
	c.JSON(http.StatusOK, gin.H{"subjects": names})
}

func (h *Handler) listSubjects(c *gin.Context) {
	subjects, err := h.Service.SubjectsWithAttendance(c.Request.Context(), auth.Owner(c))
	if err != nil {
		fail(c, err)
		return
	}
	if status := model.Status(c.Query("status")); status != "" {
		subjects = slices.DeleteFunc(subjects, func(s stats.SubjectWithAttendance) bool { return s.Status != status })
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (h *Handler) addSubject(c *gin.Context) {
	var in model.SubjectInput
	if !bind(c, &in) {
		return
	}
	sub, err := h.Service.AddSubject(c.Request.Context(), auth.Owner(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) updateSubject(c *gin.Context) {
	var p model.SubjectPatch
	if !bind(c, &p) {
		return
	}
	sub, err := h.Service.UpdateSubject(c.Request.Context(), auth.Owner(c), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) deleteSubject(c *gin.Context) {
	if err := h.Service.DeleteSubject(c.Request.Context(), auth.Owner(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
