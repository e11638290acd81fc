package handlers

import (
	"social-events-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupEventRoutes wires events, participation, the inbox and locations.
// Public and secured routes share the /events prefix, so user auth is
// attached per route instead of on a group.
func SetupEventRoutes(
	app *fiber.App,
	eventService *services.EventService,
	linkService *services.LinkService,
	messageService *services.MessageService,
	locationService *services.LocationService,
	authRequired fiber.Handler,
) {
	// 🔓 Public routes — browsing needs no user context
	app.Get("/events", eventService.ListEvents)
	app.Get("/events/nearby", locationService.NearbyEvents)
	app.Get("/events/:id", eventService.GetEvent)
	app.Get("/events/:id/location/approx", locationService.GetLocationApprox)

	// 🔐 Secured routes — require user context
	app.Post("/events", authRequired, eventService.CreateEvent)
	app.Patch("/events/:id", authRequired, eventService.UpdateEvent)
	app.Delete("/events/:id", authRequired, eventService.DeleteEvent)
	app.Post("/events/:id/picture", authRequired, eventService.UploadPicture)

	// Participation
	app.Get("/events/:id/participants", authRequired, linkService.ListParticipants)
	app.Post("/events/:id/join", authRequired, linkService.RequestJoin)
	app.Post("/events/:id/participants/:user_id/accept", authRequired, linkService.AcceptParticipant)
	app.Post("/events/:id/participants/:user_id/deny", authRequired, linkService.DenyParticipant)
	app.Delete("/events/:id/participants/:user_id", authRequired, linkService.RemoveParticipant)

	// Inbox
	app.Get("/events/:id/messages", authRequired, messageService.ListMessages)
	app.Post("/events/:id/messages", authRequired, messageService.PostMessage)
	app.Delete("/events/:id/messages/:message_id", authRequired, messageService.DeleteMessage)
	app.Post("/events/:id/messages/picture", authRequired, messageService.PostPicture)

	// Location
	app.Put("/events/:id/location", authRequired, locationService.SetLocation)
	app.Get("/events/:id/location", authRequired, locationService.GetLocation)
	app.Delete("/events/:id/location", authRequired, locationService.DeleteLocation)
}
