package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/logging"
	"storefront/internal/models"
	"storefront/internal/repo"
	"storefront/internal/service"
	"storefront/internal/transport"
)

type AdminHTTP struct {
	Orders *service.OrderService
	Repo   *repo.GormRepo
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	totalUsers, err := h.Repo.CountUsers(ctx, false)
	if err != nil {
		l.Error("dashboard_error", "status", 500, "error", err)
		return httpError(err)
	}
	activeUsers, err := h.Repo.CountUsers(ctx, true)
	if err != nil {
		l.Error("dashboard_error", "status", 500, "error", err)
		return httpError(err)
	}
	delivered, err := h.Orders.OrdersByStatus(ctx, models.StatusDelivered)
	if err != nil {
		l.Error("dashboard_error", "status", 500, "error", err)
		return httpError(err)
	}
	revenue, err := h.Orders.TotalRevenue(ctx)
	if err != nil {
		l.Error("dashboard_error", "status", 500, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.DashboardResponse{
		TotalUsers:      totalUsers,
		ActiveUsers:     activeUsers,
		CompletedOrders: len(delivered),
		TotalRevenue:    revenue,
	})
}

// ListOrders returns all orders, optionally filtered by ?status=.
func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	var (
		orders []models.Order
		err    error
	)
	if raw := c.QueryParam("status"); raw != "" {
		status, perr := service.ParseOrderStatus(raw)
		if perr != nil {
			return httpError(perr)
		}
		orders, err = h.Orders.OrdersByStatus(ctx, status)
	} else {
		orders, err = h.Orders.AllOrders(ctx)
	}
	if err != nil {
		l.Error("list_orders_error", "status", 500, "error", err)
		return httpError(err)
	}

	resp := make([]transport.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, transport.ToOrderResponse(&orders[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.get_order")

	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Orders.OrderByID(ctx, orderID)
	if err != nil {
		he := httpError(err)
		l.Warn("get_order_error", "status", statusOf(he), "order_id", orderID, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, transport.ToOrderResponse(order))
}

func (h *AdminHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	status, err := service.ParseOrderStatus(req.Status)
	if err != nil {
		l.Warn("update_status_error", "status", 400, "error", err)
		return httpError(err)
	}

	order, err := h.Orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		he := httpError(err)
		l.Warn("update_status_error", "status", statusOf(he), "order_id", orderID, "error", err)
		return he
	}

	l.Info("update_status_success", "order_id", order.ID, "new_status", order.Status)
	return c.JSON(http.StatusOK, transport.ToOrderResponse(order))
}

func (h *AdminHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.cancel_order")

	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Orders.CancelOrder(ctx, orderID)
	if err != nil {
		he := httpError(err)
		l.Warn("cancel_order_error", "status", statusOf(he), "order_id", orderID, "error", err)
		return he
	}

	l.Info("cancel_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, transport.ToOrderResponse(order))
}
