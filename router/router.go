package router

import (
	"time"

	"github.com/NomadCrew/crewtrip-backend/config"
	"github.com/NomadCrew/crewtrip-backend/handlers"
	"github.com/NomadCrew/crewtrip-backend/internal/websocket"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/middleware"
	"github.com/NomadCrew/crewtrip-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config            *config.Config
	Users             middleware.UserEnsurer
	RateLimiter       services.RateLimiter
	NewRelic          *newrelic.Application
	HealthHandler     *handlers.HealthHandler
	UserHandler       *handlers.UserHandler
	TripHandler       *handlers.TripHandler
	MemberHandler     *handlers.MemberHandler
	InvitationHandler *handlers.InvitationHandler
	ExpenseHandler    *handlers.ExpenseHandler
	SettlementHandler *handlers.SettlementHandler
	ActivityHandler   *handlers.ActivityHandler
	ChatHandler       *handlers.ChatHandler
	PollHandler       *handlers.PollHandler
	FlightHandler     *handlers.FlightHandler
	WSHandler         *websocket.Handler
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		logger.GetLogger().Warnw("Invalid trusted proxy list, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	if deps.NewRelic != nil {
		r.Use(nrgin.Middleware(deps.NewRelic))
	}
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))

	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/live", deps.HealthHandler.LivenessCheck)
	r.GET("/health/ready", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if !deps.Config.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(&deps.Config.Server, deps.Users))

	// The socket is long lived; it sits outside the per-request limiter.
	if deps.WSHandler != nil {
		v1.GET("/ws", deps.WSHandler.HandleWebSocket)
	}

	api := v1.Group("")
	if deps.RateLimiter != nil {
		window := time.Duration(deps.Config.RateLimit.WindowSeconds) * time.Second
		api.Use(middleware.RateLimiter(deps.RateLimiter, deps.Config.RateLimit.RequestsPerMinute, window))
	}

	users := api.Group("/users")
	{
		users.GET("/me", deps.UserHandler.GetMeHandler)
		users.PUT("/me", deps.UserHandler.UpdateMeHandler)
		users.DELETE("/me", deps.UserHandler.DeleteMeHandler)
	}

	api.POST("/invitations/:token/join", deps.InvitationHandler.JoinByTokenHandler)

	trips := api.Group("/trips")
	{
		trips.POST("", deps.TripHandler.CreateTripHandler)
		trips.GET("", deps.TripHandler.ListTripsHandler)
		trips.GET("/:id", deps.TripHandler.GetTripHandler)
		trips.PUT("/:id", deps.TripHandler.UpdateTripHandler)
		trips.DELETE("/:id", deps.TripHandler.ArchiveTripHandler)
		trips.GET("/:id/budget-estimate", deps.TripHandler.BudgetEstimateHandler)

		members := trips.Group("/:id/members")
		{
			members.GET("", deps.MemberHandler.ListMembersHandler)
			members.PUT("/:userId/rsvp", deps.MemberHandler.UpdateRSVPHandler)
			members.POST("/:userId/payment", deps.MemberHandler.SubmitPaymentHandler)
			members.PUT("/:userId/payment", deps.MemberHandler.ReviewPaymentHandler)
			members.PUT("/:userId/admin", deps.MemberHandler.SetAdminHandler)
			members.DELETE("/:userId", deps.MemberHandler.RemoveMemberHandler)
		}

		trips.POST("/:id/invitations", deps.InvitationHandler.InviteUsernamesHandler)
		links := trips.Group("/:id/invitation-links")
		{
			links.POST("", deps.InvitationHandler.CreateLinkHandler)
			links.GET("", deps.InvitationHandler.ListLinksHandler)
			links.DELETE("/:linkId", deps.InvitationHandler.RevokeLinkHandler)
		}

		expenses := trips.Group("/:id/expenses")
		{
			expenses.POST("", deps.ExpenseHandler.CreateExpenseHandler)
			expenses.GET("", deps.ExpenseHandler.ListExpensesHandler)
			expenses.GET("/balances", deps.ExpenseHandler.GetBalancesHandler)
			expenses.GET("/export", deps.ExpenseHandler.ExportHandler)
			expenses.DELETE("/:expenseId", deps.ExpenseHandler.DeleteExpenseHandler)
		}

		settlements := trips.Group("/:id/settlements")
		{
			settlements.GET("/options", deps.SettlementHandler.GetOptionsHandler)
			settlements.POST("", deps.SettlementHandler.CreateSettlementHandler)
			settlements.GET("", deps.SettlementHandler.ListSettlementsHandler)
			settlements.POST("/:settlementId/confirm", deps.SettlementHandler.ConfirmSettlementHandler)
			settlements.POST("/:settlementId/cancel", deps.SettlementHandler.CancelSettlementHandler)
		}

		activities := trips.Group("/:id/activities")
		{
			activities.POST("", deps.ActivityHandler.CreateActivityHandler)
			activities.GET("", deps.ActivityHandler.ListActivitiesHandler)
			activities.DELETE("/:activityId", deps.ActivityHandler.DeleteActivityHandler)
			activities.PUT("/:activityId/rsvp", deps.ActivityHandler.SetRSVPHandler)
		}

		chat := trips.Group("/:id/chat/messages")
		{
			chat.GET("", deps.ChatHandler.ListMessages)
			chat.POST("", deps.ChatHandler.SendMessage)
			chat.DELETE("/:messageId", deps.ChatHandler.DeleteMessage)
		}

		polls := trips.Group("/:id/polls")
		{
			polls.POST("", deps.PollHandler.CreatePollHandler)
			polls.GET("", deps.PollHandler.ListPollsHandler)
			polls.POST("/:pollId/votes", deps.PollHandler.CastVoteHandler)
			polls.POST("/:pollId/close", deps.PollHandler.ClosePollHandler)
		}

		flights := trips.Group("/:id/flights")
		{
			flights.GET("", deps.FlightHandler.ListFlightsHandler)
			flights.PUT("/me", deps.FlightHandler.UpsertMyFlightHandler)
			flights.DELETE("/me", deps.FlightHandler.DeleteMyFlightHandler)
		}
	}

	return r
}
