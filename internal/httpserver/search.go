package httpserver

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"storefront/internal/logging"
	"storefront/internal/search"
	"storefront/internal/util"
)

type SearchHTTP struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search")

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, products, err := search.Search(ctx, h.ES, h.Index, q, from, size)
	if err != nil {
		l.Error("search_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
