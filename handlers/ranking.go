package handlers

import (
	"social-events-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRankingRoutes(
	app *fiber.App,
	rankingService *services.RankingService,
	standingService *services.StandingService,
	authRequired fiber.Handler,
) {
	// Inspection endpoints: matrix and a dry-run rating computation. The
	// worker owns the persisted runs.
	app.Get("/events/:id/matrix", authRequired, rankingService.GetEncounterMatrix)
	app.Get("/events/:id/ratings", authRequired, rankingService.ComputeRatings)

	standings := app.Group("/standings", authRequired)
	standings.Get("/:category", standingService.GetStanding)
	standings.Get("/:category/leaderboard", standingService.GetLeaderboard)
}
