package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cobaltwebtech/irishette-sub001/routes"
	"github.com/cobaltwebtech/irishette-sub001/services"
	"github.com/cobaltwebtech/irishette-sub001/storage"
	"github.com/cobaltwebtech/irishette-sub001/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint - CRITICAL for Render
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// The scheduled sync pass shares its driver with the admin endpoints so
	// manual runs and run-summary reads talk to the same state.
	syncDriver := services.NewSyncDriver(services.NewCalendarService())
	syncDriver.Start()
	defer syncDriver.Stop()

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
	}

	room := app.Party("/api/room")
	{
		room.Get("/", routes.ListRooms)
		room.Get("/{ref}", routes.GetRoom)
	}

	pricing := app.Party("/api/pricing")
	{
		pricing.Post("/quote", routes.CalculateQuote)
	}

	availability := app.Party("/api/availability")
	{
		availability.Post("/check", routes.CheckAvailability)
		availability.Get("/room/{roomID:uint}", routes.GetRoomAvailability)
	}

	reservation := app.Party("/api/reservation")
	{
		reservation.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateReservation)
		reservation.Get("/mine", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUserReservations)
		reservation.Get("/code/{code}", accessTokenVerifierMiddleware, routes.GetReservationByCode)
		reservation.Get("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetReservation)
		reservation.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CancelReservation)
	}

	// Partner platforms poll this by URL; no auth.
	calendar := app.Party("/api/calendar")
	{
		calendar.Get("/{slug}/feed.ics", routes.GetCalendarFeed)
	}

	// Stripe calls this directly; the signature check is the auth.
	app.Post("/api/webhooks/stripe", routes.StripeWebhook)

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Post("/rooms", routes.CreateRoom)
		admin.Put("/rooms/{id:uint}", routes.UpdateRoom)
		admin.Patch("/rooms/{id:uint}/status", routes.UpdateRoomStatus)
		admin.Patch("/rooms/{id:uint}/calendars", routes.UpdateRoomCalendars)

		admin.Get("/rooms/{roomID:uint}/pricing-rules", routes.GetRoomPricingRules)
		admin.Post("/pricing-rules", routes.CreatePricingRule)
		admin.Put("/pricing-rules/{id:uint}", routes.UpdatePricingRule)
		admin.Delete("/pricing-rules/{id:uint}", routes.DeletePricingRule)

		admin.Post("/blocks", routes.CreateBlockedPeriod)
		admin.Get("/rooms/{roomID:uint}/blocks", routes.ListBlockedPeriods)
		admin.Delete("/blocks/{id:uint}", routes.DeleteBlockedPeriod)

		admin.Get("/reservations", routes.ListReservations)

		admin.Post("/rooms/{roomID:uint}/sync/{platform}", routes.SyncRoomCalendar)
		admin.Post("/sync/run", routes.RunFullSync(syncDriver))
		admin.Get("/sync/last-run", routes.GetLastSyncRun(syncDriver))
		admin.Get("/rooms/{roomID:uint}/sync-logs", routes.GetSyncLogs)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
