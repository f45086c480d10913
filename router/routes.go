package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/krishkalaria12/car-vault/auth"
	"github.com/krishkalaria12/car-vault/handlers"
	"github.com/krishkalaria12/car-vault/middleware"
)

func SetupRoutes(app *fiber.App, authHandler *handlers.AuthHandler, carHandler *handlers.CarHandler, authSvc *auth.Service) {
	ts := authSvc.TokenService()

	app.Use(middleware.RouteGuard(ts))

	// Provider sign-in (OAuth) and avatar routes come straight from
	// go-pkgz/auth.
	providerRoutes, avatarRoutes := authSvc.Handlers()
	app.All("/auth/*", adaptor.HTTPHandler(providerRoutes))
	app.All("/avatar/*", adaptor.HTTPHandler(avatarRoutes))

	api := app.Group("/api", logger.New())

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", middleware.Auth(ts), authHandler.Logout)
	authGroup.Get("/me", middleware.Auth(ts), authHandler.Me)

	// Cars
	cars := api.Group("/cars", middleware.Auth(ts))
	cars.Get("/", carHandler.List)
	cars.Post("/", carHandler.Create)
	cars.Get("/:id", carHandler.Get)
	cars.Patch("/:id", carHandler.Update)
	cars.Delete("/:id", carHandler.Delete)
}
