package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"starfruit/internal/config"
	"starfruit/internal/domain/lifecycle"
	"starfruit/internal/domain/model"
	"starfruit/internal/middleware"
	"starfruit/internal/notify"
	"starfruit/internal/usecase"

	"github.com/labstack/echo/v4"
)

const sseKeepaliveInterval = 25 * time.Second

// 顧客向けの注文API。チェックアウトと参照、キャンセル、SSEの通知ストリーム。
type OrderHandler struct {
	checkout *usecase.CheckoutUsecase
	orders   *usecase.OrderUsecase
	delivery *usecase.DeliveryUsecase
	hub      *notify.Hub
}

func NewOrderHandler(
	checkout *usecase.CheckoutUsecase,
	orders *usecase.OrderUsecase,
	delivery *usecase.DeliveryUsecase,
	hub *notify.Hub,
) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders, delivery: delivery, hub: hub}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RoleGuard(model.UserTypeCustomer))

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/stream", h.stream)
	g.GET("/:id", h.detail)
	g.GET("/:id/history", h.history)
	g.POST("/:id/cancel", h.cancel)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.CheckoutInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.checkout.Checkout(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}

	//全店舗失敗は成功扱いにしない
	if len(out.Orders) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, out)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.orders.ListForCustomer(c.Request().Context(), userID, parseStatusFilter(c.QueryParam("status")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	actor := lifecycle.Actor{ID: userID, Type: model.UserTypeCustomer}
	out, err := h.orders.GetDetail(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) history(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	actor := lifecycle.Actor{ID: userID, Type: model.UserTypeCustomer}
	out, err := h.orders.History(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.delivery.CancelByCustomer(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// streamは節目通知のSSE。切断されたら購読ごと解除する。
func (h *OrderHandler) stream(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ch, cancel := h.hub.Subscribe(userID)
	defer cancel()

	ctx := c.Request().Context()
	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-ch:
			if !ok {
				return nil
			}
			data, err := json.Marshal(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: milestone\ndata: %s\n\n", data)
			w.Flush()
		case <-keepalive.C:
			//プロキシに切られないように定期的にコメント行を流す
			fmt.Fprint(w, ": keepalive\n\n")
			w.Flush()
		}
	}
}

// status=pending,preparing のようなカンマ区切りを受ける。不明な値は無視。
func parseStatusFilter(raw string) []model.OrderStatus {
	if raw == "" {
		return nil
	}
	statuses := make([]model.OrderStatus, 0, 3)
	for _, s := range strings.Split(raw, ",") {
		st := model.OrderStatus(strings.TrimSpace(s))
		switch st {
		case model.OrderStatusPending, model.OrderStatusPreparing, model.OrderStatusReady,
			model.OrderStatusOnWay, model.OrderStatusDelivered, model.OrderStatusCancelled:
			statuses = append(statuses, st)
		}
	}
	return statuses
}
