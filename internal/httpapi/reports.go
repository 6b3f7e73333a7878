package httpapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"academia/internal/reports"
)

func (h *handler) createReport(c *gin.Context) {
	var in reports.Input
	if !h.bind(c, &in) {
		return
	}
	rep, err := h.Reports.Create(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "report created", rep)
}

func (h *handler) listReports(c *gin.Context) {
	list, err := h.Reports.List(c.Request.Context(), principal(c), c.Query("kind"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "reports", list)
}

func (h *handler) getReport(c *gin.Context) {
	id, valid := h.id(c, "id", reports.ErrNotFound)
	if !valid {
		return
	}
	rep, err := h.Reports.Get(c.Request.Context(), principal(c), id, "")
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "report", rep)
}

func (h *handler) updateReport(c *gin.Context) {
	id, valid := h.id(c, "id", reports.ErrNotFound)
	if !valid {
		return
	}
	var in reports.Input
	if !h.bind(c, &in) {
		return
	}
	rep, err := h.Reports.Update(c.Request.Context(), principal(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "report updated", rep)
}

func (h *handler) deleteReport(c *gin.Context) {
	id, valid := h.id(c, "id", reports.ErrNotFound)
	if !valid {
		return
	}
	if err := h.Reports.Delete(c.Request.Context(), principal(c), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "report deleted", nil)
}

// reportPDF renders a report of kind as a download.
func (h *handler) reportPDF(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := h.id(c, "id", reports.ErrNotFound)
		if !valid {
			return
		}
		rep, err := h.Reports.Get(c.Request.Context(), principal(c), id, kind)
		if err != nil {
			h.fail(c, err)
			return
		}
		var buf bytes.Buffer
		if err := h.RenderPDF(&buf, rep); err != nil {
			h.fail(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reports.Filename(rep)))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}
