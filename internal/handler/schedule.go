package handler

import (
	"cmp"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"attendify/internal/auth"
	"attendify/internal/model"
)

// weekOrder sorts slots Monday first, then by start time.
func weekOrder(a, b model.TimetableEntry) int {
	if c := cmp.Compare(slices.Index(model.Week, a.Day), slices.Index(model.Week, b.Day)); c != 0 {
		return c
	}
	return cmp.Compare(a.StartTime, b.StartTime)
}

func (h *Handler) listTimetable(c *gin.Context) {
	slots, err := h.Service.Timetable(c.Request.Context(), auth.Owner(c))
	if err != nil {
		fail(c, err)
		return
	}
	if day := model.Day(c.Query("day")); day != "" {
		if !day.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown day " + string(day)})
			return
		}
		slots = slices.DeleteFunc(slots, func(e model.TimetableEntry) bool { return e.Day != day })
	}
	slices.SortStableFunc(slots, weekOrder)
	c.JSON(http.StatusOK, gin.H{"timetable": slots})
}

func (h *Handler) addTimetableEntry(c *gin.Context) {
	var in model.TimetableInput
	if !bind(c, &in) {
		return
	}
	e, err := h.Service.AddTimetableEntry(c.Request.Context(), auth.Owner(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) updateTimetableEntry(c *gin.Context) {
	var p model.TimetablePatch
	if !bind(c, &p) {
		return
	}
	e, err := h.Service.UpdateTimetableEntry(c.Request.Context(), auth.Owner(c), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) deleteTimetableEntry(c *gin.Context) {
	if err := h.Service.DeleteTimetableEntry(c.Request.Context(), auth.Owner(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) currentClass(c *gin.Context) {
	e, ok, err := h.Service.CurrentClass(c.Request.Context(), auth.Owner(c))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"current": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": e})
}
