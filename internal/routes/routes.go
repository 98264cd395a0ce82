package routes

import (
	"github.com/formloop/formloop/internal/handlers"
	"github.com/formloop/formloop/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	formHandler *handlers.FormHandler,
	tokenHandler *handlers.TokenHandler,
	responseHandler *handlers.ResponseHandler,
) {
	// Rate limiting config for the issuance endpoint
	rateLimitConfig := middleware.DefaultIssuanceRateLimit()

	// Form management
	router.Post("/forms", formHandler.CreateForm)
	router.Get("/forms", formHandler.ListForms)
	router.Get("/forms/{id}", formHandler.GetForm)
	router.Get("/forms/{id}/summary", formHandler.GetSummary)
	router.Get("/forms/{id}/tokens", tokenHandler.ListTokens)

	// Access token lifecycle
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/forms/generate-tokens", tokenHandler.GenerateTokens)
	router.Post("/forms/validate-token", tokenHandler.ValidateToken)

	// Response submission and listing
	router.Post("/responses", responseHandler.SubmitResponse)
	router.Get("/responses", responseHandler.ListResponses)
}
