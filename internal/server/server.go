package server

import (
	"starfruit/internal/config"
	"starfruit/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlersはルーティングに参加するhandler一式。
type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Address *handler.AddressHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Store   *handler.StoreHandler
	Rider   *handler.RiderHandler
}

// Startはechoを組み立てて待ち受ける。
func Start(cfg config.Config, h Handlers) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	RegisterRoutes(e, cfg, h)

	return e.Start(":" + cfg.Port)
}
