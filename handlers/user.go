package handlers

import (
	"social-events-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService, authRequired fiber.Handler) {
	// 🔐 All profile routes require user context
	secured := app.Group("/users", authRequired)

	secured.Get("/me", userService.GetSelf)
	secured.Patch("/me", userService.UpdateSelf)
	secured.Delete("/me", userService.DeleteSelf)
	secured.Post("/me/picture", userService.UploadPicture)

	secured.Get("/", userService.SearchUsers)

	secured.Get("/me/invites/sent", userService.GetSentInvites)
	secured.Get("/me/invites/received", userService.GetReceivedInvites)
	secured.Get("/me/friends", userService.GetFriends)
}
