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

// ライダー向けAPI。プロフィール・稼働状態・配達の受諾と進行。
type RiderHandler struct {
	rider    *usecase.RiderUsecase
	delivery *usecase.DeliveryUsecase
	poll     *poller.Poller
}

func NewRiderHandler(rider *usecase.RiderUsecase, delivery *usecase.DeliveryUsecase, poll *poller.Poller) *RiderHandler {
	return &RiderHandler{rider: rider, delivery: delivery, poll: poll}
}

func (h *RiderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/rider")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RoleGuard(model.UserTypeRider))

	g.GET("/profile", h.getProfile)
	g.PUT("/profile", h.updateProfile)
	g.PUT("/availability", h.setAvailability)

	g.GET("/deliveries/available", h.listAvailable)
	g.GET("/deliveries/available/stream", h.availableStream)
	g.GET("/deliveries", h.listMine)
	g.POST("/deliveries/:id/accept", h.accept)
	g.POST("/deliveries/:id/arrive", h.arrive)
	g.POST("/deliveries/:id/depart", h.depart)
	g.POST("/deliveries/:id/complete", h.complete)
	g.GET("/deliveries/:id/map", h.deliveryMap)
}

func (h *RiderHandler) getProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.rider.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RiderHandler) updateProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.RiderProfileInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.rider.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RiderHandler) setAvailability(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.AvailabilityInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.rider.SetAvailability(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RiderHandler) listAvailable(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.delivery.ListAvailable(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// availableStreamは受けられる配達のフィードをポーリング間隔ごとに流すSSE。
func (h *RiderHandler) availableStream(c echo.Context) error {
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
		out, err := h.delivery.ListAvailable(ctx, userID)
		if err != nil {
			return err
		}
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "event: deliveries\ndata: %s\n\n", data)
		w.Flush()
		return nil
	})
	return nil
}

func (h *RiderHandler) listMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.delivery.ListMine(c.Request().Context(), userID, parseStatusFilter(c.QueryParam("status")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RiderHandler) accept(c echo.Context) error {
	return h.transition(c, h.delivery.Accept)
}

func (h *RiderHandler) arrive(c echo.Context) error {
	return h.transition(c, h.delivery.ArriveAtStore)
}

func (h *RiderHandler) depart(c echo.Context) error {
	return h.transition(c, h.delivery.DepartToCustomer)
}

func (h *RiderHandler) complete(c echo.Context) error {
	return h.transition(c, h.delivery.Complete)
}

func (h *RiderHandler) transition(c echo.Context, fn func(ctx context.Context, riderID, orderID string) (usecase.OrderOutput, error)) error {
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

func (h *RiderHandler) deliveryMap(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.rider.DeliveryMap(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
