package ui

import (
	"net/http"
	"strconv"
	"strings"

	"triagelens/domain/core"
	"triagelens/domain/table"
	"triagelens/internal/errors"
	"triagelens/internal/filter"
	"triagelens/internal/report"
	"triagelens/internal/roles"

	"github.com/gin-gonic/gin"
)

// addFilterRequest is the body of POST /api/filters. Value may be a JSON
// string or number; strings are classified like sheet cells.
type addFilterRequest struct {
	Field    string     `json:"field" binding:"required"`
	Operator string     `json:"operator" binding:"required"`
	Value    table.Cell `json:"value"`
}

// updateFilterRequest is the body of PATCH /api/filters/:id; absent fields
// are left unchanged
type updateFilterRequest struct {
	Field    *string     `json:"field"`
	Operator *string     `json:"operator"`
	Value    *table.Cell `json:"value"`
}

func (s *Server) handleListFilters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"filters":   s.state.View().Filters.Rules(),
		"operators": filter.Operators,
	})
}

func (s *Server) handleAddFilter(c *gin.Context) {
	var req addFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	op, err := filter.ParseOperator(req.Operator)
	if err != nil {
		respondError(c, err)
		return
	}

	rule := s.state.AddFilter(filter.Rule{
		ID:       core.NewRuleID(),
		Field:    strings.TrimSpace(req.Field),
		Operator: op,
		Value:    req.Value,
	})
	logger.Debug("filter added: %s", rule)
	c.JSON(http.StatusCreated, rule)
}

func (s *Server) handleUpdateFilter(c *gin.Context) {
	id, err := core.ParseRuleID(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	var req updateFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	upd := filter.RuleUpdate{Field: req.Field, Value: req.Value}
	if req.Operator != nil {
		op, err := filter.ParseOperator(*req.Operator)
		if err != nil {
			respondError(c, err)
			return
		}
		upd.Operator = &op
	}

	rule, err := s.state.UpdateFilter(id, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (s *Server) handleRemoveFilter(c *gin.Context) {
	id, err := core.ParseRuleID(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	if err := s.state.RemoveFilter(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClearFilters(c *gin.Context) {
	s.state.ClearFilters()
	c.Status(http.StatusNoContent)
}

// handleRows returns one page of filtered rows, cells aligned with the header
func (s *Server) handleRows(c *gin.Context) {
	index, err := queryInt(c, "page", 0)
	if err != nil {
		respondError(c, err)
		return
	}
	size, err := queryInt(c, "size", s.options.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	view := s.view(c)
	page := view.Page(index, size)
	header := view.Header()

	rows := make([][]table.Cell, page.Rows.Len())
	for i := range rows {
		row := page.Rows.Row(i)
		cells := make([]table.Cell, len(header))
		for j := range header {
			cells[j] = row.At(j)
		}
		rows[i] = cells
	}

	c.JSON(http.StatusOK, gin.H{
		"page":        page.Index,
		"size":        page.Size,
		"total_rows":  page.TotalRows,
		"total_pages": page.TotalPages,
		"header":      header,
		"rows":        rows,
	})
}

func (s *Server) handleRoles(c *gin.Context) {
	view := s.view(c)
	c.JSON(http.StatusOK, gin.H{
		"roles":            view.Roles(),
		"default_category": roles.DefaultCategory(view.Header()),
	})
}

func (s *Server) handleChart(c *gin.Context) {
	view := s.view(c)
	spec := view.ChartSpec(c.Query("category"), c.Query("metric"))
	if spec.ValueColumn != "" && !view.Rows.HasColumn(spec.ValueColumn) {
		respondError(c, core.NewColumnNotFoundError(spec.ValueColumn))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spec":    spec,
		"buckets": view.Chart(spec.Category, c.Query("metric")),
	})
}

func (s *Server) handleFunnel(c *gin.Context) {
	c.JSON(http.StatusOK, s.view(c).Funnel())
}

func (s *Server) handleKPIs(c *gin.Context) {
	c.JSON(http.StatusOK, s.view(c).KPIs())
}

func (s *Server) handleColumnSummary(c *gin.Context) {
	summary, err := s.view(c).Summary(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleReport renders the summary report as markdown (default) or HTML
func (s *Server) handleReport(c *gin.Context) {
	view := s.view(c)
	in := report.Input{
		Source:  view.Source,
		Rows:    view.Rows.Len(),
		Filters: view.Filters.Rules(),
		Funnel:  view.Funnel(),
		KPIs:    view.KPIs(),
	}

	switch format := c.DefaultQuery("format", "md"); format {
	case "md", "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(in)))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(in))
	default:
		respondError(c, errors.InvalidInput("format must be md or html, got "+strconv.Quote(format)))
	}
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidInput(key + " must be an integer")
	}
	return n, nil
}
