package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"storefront/internal/events"
	"storefront/internal/logging"
	"storefront/internal/service"
	"storefront/internal/transport"
	"storefront/internal/util"
)

type ProductHTTP struct {
	Svc      *service.CatalogService
	Producer *events.Producer
}

func (h *ProductHTTP) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicProductEvents, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		he := httpError(err)
		l.Warn("get_product_error", "status", statusOf(he), "product_id", id, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListProducts(ctx, offset, limit, true)
	if err != nil {
		l.Error("list_products_error", "status", 500, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		he := httpError(err)
		l.Warn("create_product_error", "status", statusOf(he), "error", err)
		return he
	}

	h.publish(c, strconv.Itoa(int(product.ID)), map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})
	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		he := httpError(err)
		l.Warn("patch_product_error", "status", statusOf(he), "product_id", id, "error", err)
		return he
	}

	h.publish(c, strconv.Itoa(int(product.ID)), map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})
	l.Info("patch_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		he := httpError(err)
		l.Warn("delete_product_error", "status", statusOf(he), "product_id", id, "error", err)
		return he
	}

	h.publish(c, strconv.Itoa(int(id)), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
