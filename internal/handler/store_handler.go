package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"starfruit/internal/config"
	"starfruit/internal/domain/model"
	"starfruit/internal/middleware"
	"starfruit/internal/poller"
	"starfruit/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 進行中として店舗画面に出すステータス
var storeActiveStatuses = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusPreparing,
	model.OrderStatusReady,
	model.OrderStatusOnWay,
}

// 店舗オーナー向けAPI。プロフィール・商品・受注の操作。
type StoreHandler struct {
	stores   *usecase.StoreUsecase
	products *usecase.ProductUsecase
	orders   *usecase.OrderUsecase
	delivery *usecase.DeliveryUsecase
	poll     *poller.Poller
}

func NewStoreHandler(
	stores *usecase.StoreUsecase,
	products *usecase.ProductUsecase,
	orders *usecase.OrderUsecase,
	delivery *usecase.DeliveryUsecase,
	poll *poller.Poller,
) *StoreHandler {
	return &StoreHandler{stores: stores, products: products, orders: orders, delivery: delivery, poll: poll}
}

func (h *StoreHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/store")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RoleGuard(model.UserTypeStore))

	g.GET("/profile", h.getProfile)
	g.PUT("/profile", h.upsertProfile)

	g.GET("/products", h.listProducts)
	g.POST("/products", h.createProduct)
	g.PATCH("/products/:id", h.updateProduct)
	g.DELETE("/products/:id", h.deleteProduct)

	g.GET("/orders", h.listOrders)
	g.GET("/orders/stream", h.ordersStream)
	g.POST("/orders/:id/prepare", h.prepare)
	g.POST("/orders/:id/ready", h.ready)
	g.POST("/orders/:id/cancel", h.cancel)
}

func (h *StoreHandler) getProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.stores.GetMine(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) upsertProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.StoreInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.stores.Upsert(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) listProducts(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.products.ListOwn(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) createProduct(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.products.Create(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *StoreHandler) updateProduct(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.products.Update(c.Request().Context(), userID, c.Param("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) deleteProduct(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.products.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *StoreHandler) listOrders(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	statuses := parseStatusFilter(c.QueryParam("status"))
	if len(statuses) == 0 {
		statuses = storeActiveStatuses
	}

	out, err := h.orders.ListForStoreOwner(c.Request().Context(), userID, statuses)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ordersStreamは受注一覧をポーリング間隔ごとに流すSSE。
// 店舗画面は差分購読までは要らないので、スナップショットの再送で十分。
func (h *StoreHandler) ordersStream(c echo.Context) error {
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

	h.poll.Run(c.Request().Context(), func(ctx context.Context) error {
		out, err := h.orders.ListForStoreOwner(ctx, userID, storeActiveStatuses)
		if err != nil {
			return err
		}
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "event: orders\ndata: %s\n\n", data)
		w.Flush()
		return nil
	})
	return nil
}

func (h *StoreHandler) prepare(c echo.Context) error {
	return h.transition(c, h.delivery.StartPreparing)
}

func (h *StoreHandler) ready(c echo.Context) error {
	return h.transition(c, h.delivery.MarkReady)
}

func (h *StoreHandler) cancel(c echo.Context) error {
	return h.transition(c, h.delivery.CancelByStore)
}

func (h *StoreHandler) transition(c echo.Context, fn func(ctx context.Context, ownerID, orderID string) (usecase.OrderOutput, error)) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := fn(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
