package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	"storefront/internal/events"
	"storefront/internal/logging"
	"storefront/internal/service"
	"storefront/internal/transport"
)

type CartHTTP struct {
	Svc      *service.CartService
	Producer *events.Producer
}

func (h *CartHTTP) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicCartEvents, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	email, err := auth.UserEmail(c)
	if err != nil {
		l.Warn("get_cart_error", "status", 401, "error", err)
		return err
	}

	view, err := h.Svc.GetCart(ctx, email)
	if err != nil {
		he := httpError(err)
		l.Error("get_cart_error", "status", statusOf(he), "error", err)
		return he
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	email, err := auth.UserEmail(c)
	if err != nil {
		return err
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	view, err := h.Svc.AddToCart(ctx, email, req.ProductID, req.Quantity)
	if err != nil {
		he := httpError(err)
		l.Warn("add_to_cart_error", "status", statusOf(he), "error", err)
		return he
	}

	h.publish(c, email, map[string]any{
		"type":       "cart_item_added",
		"user":       email,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})
	l.Info("add_to_cart_success")
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	email, err := auth.UserEmail(c)
	if err != nil {
		return err
	}

	productID, err := parseUintParam(c, "productId")
	if err != nil {
		return err
	}

	view, err := h.Svc.RemoveFromCart(ctx, email, productID)
	if err != nil {
		he := httpError(err)
		l.Warn("remove_from_cart_error", "status", statusOf(he), "error", err)
		return he
	}

	h.publish(c, email, map[string]any{
		"type":       "cart_item_removed",
		"user":       email,
		"product_id": productID,
	})
	l.Info("remove_from_cart_success")
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	email, err := auth.UserEmail(c)
	if err != nil {
		return err
	}

	view, err := h.Svc.ClearCart(ctx, email)
	if err != nil {
		he := httpError(err)
		l.Error("clear_cart_error", "status", statusOf(he), "error", err)
		return he
	}

	h.publish(c, email, map[string]any{"type": "cart_cleared", "user": email})
	l.Info("clear_cart_success")
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) IncreaseLine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.increase_line")

	email, err := auth.UserEmail(c)
	if err != nil {
		return err
	}

	lineID, err := parseUintParam(c, "lineId")
	if err != nil {
		return err
	}

	view, err := h.Svc.IncreaseQuantity(ctx, lineID)
	if err != nil {
		he := httpError(err)
		l.Warn("increase_line_error", "status", statusOf(he), "error", err)
		return he
	}

	h.publish(c, email, map[string]any{"type": "cart_line_increased", "user": email, "line_id": lineID})
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) DecreaseLine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.decrease_line")

	email, err := auth.UserEmail(c)
	if err != nil {
		return err
	}

	lineID, err := parseUintParam(c, "lineId")
	if err != nil {
		return err
	}

	view, err := h.Svc.DecreaseQuantity(ctx, lineID)
	if err != nil {
		he := httpError(err)
		l.Warn("decrease_line_error", "status", statusOf(he), "error", err)
		return he
	}

	h.publish(c, email, map[string]any{"type": "cart_line_decreased", "user": email, "line_id": lineID})
	return c.JSON(http.StatusOK, view)
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}
