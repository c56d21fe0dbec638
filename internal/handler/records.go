package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendify/internal/auth"
	"attendify/internal/model"
)

func (h *Handler) listAttendance(c *gin.Context) {
	entries, err := h.Service.Attendance(c.Request.Context(), auth.Owner(c), c.Query("date"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": entries})
}

func (h *Handler) addAttendance(c *gin.Context) {
	var in model.AttendanceInput
	if !bind(c, &in) {
		return
	}
	a, err := h.Service.AddAttendance(c.Request.Context(), auth.Owner(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) addBulkAttendance(c *gin.Context) {
	var in model.BulkAttendanceInput
	if !bind(c, &in) {
		return
	}
	entries, err := h.Service.AddBulkAttendance(c.Request.Context(), auth.Owner(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attendance": entries})
}

func (h *Handler) updateAttendance(c *gin.Context) {
	var p model.AttendancePatch
	if !bind(c, &p) {
		return
	}
	a, err := h.Service.UpdateAttendance(c.Request.Context(), auth.Owner(c), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) deleteAttendance(c *gin.Context) {
	if err := h.Service.DeleteAttendance(c.Request.Context(), auth.Owner(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) calendar(c *gin.Context) {
	day, err := h.Service.Calendar(c.Request.Context(), auth.Owner(c), c.Param("date"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

func (h *Handler) markDay(c *gin.Context) {
	var in model.MarkDayInput
	if !bind(c, &in) {
		return
	}
	entries, err := h.Service.MarkDay(c.Request.Context(), auth.Owner(c), c.Param("date"), in.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": entries})
}

func (h *Handler) stats(c *gin.Context) {
	st, err := h.Service.Stats(c.Request.Context(), auth.Owner(c), c.Query("date"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) predictions(c *gin.Context) {
	p, err := h.Service.Predictions(c.Request.Context(), auth.Owner(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.Service.Dashboard(c.Request.Context(), auth.Owner(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) prompt(c *gin.Context) {
	p, ok, err := h.Service.Prompt(c.Request.Context(), auth.Owner(c))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"prompt": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": p})
}
