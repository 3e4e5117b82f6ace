package handler

import (
	"net/http"
	"strconv"

	"starfruit/internal/middleware"
	"starfruit/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (string, bool) {
	raw := c.Get(middleware.CtxUserIDKey)
	id, ok := raw.(string)
	return id, ok && id != ""
}

// 公開API（商品・店舗一覧）
type ProductHandler struct {
	uc     *usecase.ProductUsecase
	stores *usecase.StoreUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase, stores *usecase.StoreUsecase) *ProductHandler {
	return &ProductHandler{uc: uc, stores: stores}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/stores", h.listStores)
	e.GET("/stores/:id/products", h.listStoreProducts)
}

func (h *ProductHandler) list(c echo.Context) error {
	// limit（default 100）
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListActive(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) listStores(c echo.Context) error {
	out, err := h.stores.ListActiveByCity(c.Request().Context(), c.QueryParam("city"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) listStoreProducts(c echo.Context) error {
	out, err := h.uc.ListByStore(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
