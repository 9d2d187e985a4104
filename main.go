package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/credenciamento/event-api/cmd/app"
)

// @title        Event credentialing API
// @version      1.0
// @description  Participants, credentials, check-in/check-out and radio loans of events.
//
// @host      localhost:8080
// @BasePath  /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
//
// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
