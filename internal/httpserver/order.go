package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	"storefront/internal/events"
	"storefront/internal/logging"
	"storefront/internal/service"
	"storefront/internal/transport"
)

type OrderHTTP struct {
	Svc      *service.OrderService
	Producer *events.Producer
}

func (h *OrderHTTP) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicOrderEvents, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place")

	email, err := auth.UserEmail(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.PlaceOrder(ctx, email)
	if err != nil {
		he := httpError(err)
		l.Warn("place_order_error", "status", statusOf(he), "error", err)
		return he
	}

	h.publish(c, email, map[string]any{
		"type":      "order_created",
		"user":      email,
		"order_id":  order.ID,
		"reference": order.Reference,
		"total":     order.TotalPrice,
	})
	l.Info("place_order_success", "order_id", order.ID, "total", order.TotalPrice)
	return c.JSON(http.StatusCreated, transport.ToOrderResponse(order))
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	email, err := auth.UserEmail(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.Orders(ctx, email)
	if err != nil {
		he := httpError(err)
		l.Error("list_orders_error", "status", statusOf(he), "error", err)
		return he
	}

	resp := make([]transport.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, transport.ToOrderResponse(&orders[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHTTP) CancelMyOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_mine")

	email, err := auth.UserEmail(c)
	if err != nil {
		return err
	}

	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.CancelUserOrder(ctx, orderID, email)
	if err != nil {
		he := httpError(err)
		l.Warn("cancel_order_error", "status", statusOf(he), "order_id", orderID, "error", err)
		return he
	}

	h.publish(c, email, map[string]any{
		"type":     "order_cancelled",
		"user":     email,
		"order_id": order.ID,
	})
	l.Info("cancel_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, transport.ToOrderResponse(order))
}

// Pay is a stub: the storefront records the intent and reports success.
// No gateway is involved.
func (h *OrderHTTP) Pay(c echo.Context) error {
	email, err := auth.UserEmail(c)
	if err != nil {
		return err
	}

	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.OrderByID(c.Request().Context(), orderID)
	if err != nil {
		return httpError(err)
	}
	if order.UserEmail != email {
		return httpError(service.ErrOwnership)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"order_id": order.ID,
		"status":   "payment accepted",
	})
}
