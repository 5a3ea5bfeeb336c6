package handlers

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	esx "github.com/blog-platform/backend/internal/es"
	"github.com/blog-platform/backend/internal/httpx"
	"github.com/blog-platform/backend/internal/service/search"
	"github.com/blog-platform/backend/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func NewSearchHandler(es *elasticsearch.Client) *SearchHandler {
	return &SearchHandler{ES: es, Index: esx.PostIndex}
}

func (h *SearchHandler) Search(c echo.Context) error {
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Search is unavailable")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("limit"))
	from, limit := util.Calculate(page, size)

	total, posts, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, limit)
	if err != nil {
		return err
	}

	return httpx.Success(c, http.StatusOK, "Posts fetched successfully", echo.Map{
		"total": total,
		"posts": posts,
	})
}
