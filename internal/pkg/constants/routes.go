package constants

// Route paths registered by the HTTP router.
const (
	RouteHome           = "/"
	RouteVehicleInfo    = "/vehicle-info/:vin"
	RouteCreateCheckout = "/create-checkout-session"
	RouteWebhook        = "/webhook"
	RouteContact        = "/contact"
	RouteMetrics        = "/metrics"
)
