package handlers

import (
	"social-events-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupFriendshipRoutes(app *fiber.App, friendshipService *services.FriendshipService, authRequired fiber.Handler) {
	secured := app.Group("/friends", authRequired)

	secured.Post("/:user_id/invite", friendshipService.SendInvite)
	secured.Post("/:user_id/accept", friendshipService.AcceptInvite)
	secured.Post("/:user_id/reject", friendshipService.RejectInvite)
	secured.Delete("/:user_id/invite", friendshipService.UnsendInvite)
	secured.Delete("/:user_id", friendshipService.DeleteFriend)
	secured.Post("/:user_id/report", friendshipService.ReportUser)
}
