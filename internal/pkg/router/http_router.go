package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AutoVinReports/VinFox/app/controllers"
	"github.com/AutoVinReports/VinFox/internal/pkg/constants"
)

// HttpRouter registers the public HTTP surface of the service.
type HttpRouter struct {
	server *controllers.Server
}

func NewHttpRouter(server *controllers.Server) *HttpRouter {
	return &HttpRouter{server: server}
}

func (h *HttpRouter) InstallRouter(app *fiber.App) {
	app.Get(constants.RouteHome, h.server.HandleHome)
	app.Get(constants.RouteVehicleInfo, h.server.HandleVehicleInfo)
	app.Post(constants.RouteCreateCheckout, h.server.HandleCreateCheckoutSession)
	app.Post(constants.RouteWebhook, h.server.HandleStripeWebhook)
	app.Post(constants.RouteContact, h.server.HandleContact)
}
