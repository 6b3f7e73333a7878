package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academia/internal/activity"
)

func (h *handler) submitActivity(c *gin.Context) {
	var in activity.CreateInput
	if !h.bind(c, &in) {
		return
	}
	a, err := h.Activity.Submit(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "submitted for approval", a)
}

func (h *handler) myActivities(c *gin.Context) {
	list, err := h.Activity.Mine(c.Request.Context(), principal(c), c.Query("type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "student details", list)
}

func (h *handler) pendingActivities(c *gin.Context) {
	list, err := h.Activity.Pending(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "pending approvals", list)
}

func (h *handler) getActivity(c *gin.Context) {
	id, valid := h.id(c, "id", activity.ErrNotFound)
	if !valid {
		return
	}
	a, err := h.Activity.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "student detail", a)
}

func (h *handler) activityHistory(c *gin.Context) {
	id, valid := h.id(c, "id", activity.ErrNotFound)
	if !valid {
		return
	}
	events, err := h.Activity.History(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "history", events)
}

func (h *handler) setActivityStatus(c *gin.Context) {
	id, valid := h.id(c, "id", activity.ErrNotFound)
	if !valid {
		return
	}
	var in activity.StatusInput
	if !h.bind(c, &in) {
		return
	}
	a, err := h.Activity.SetStatus(c.Request.Context(), principal(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "record "+a.Status, a)
}
