package incomeRoutes

import (
	incomeController "fintrack/controllers/income"
	"fintrack/middleware"
	"fintrack/token"
	incomeValidator "fintrack/validators/income"

	"github.com/gofiber/fiber/v2"
)

func SetupIncomeRoutes(app *fiber.App, tokens *token.Issuer, ct *incomeController.Controller) {
	incomeGroup := app.Group("/income", middleware.RequireAuth(tokens))

	incomeGroup.Get("/", ct.List)
	incomeGroup.Post("/", incomeValidator.Income(), ct.Create)
	incomeGroup.Put("/:id", incomeValidator.Income(), ct.Update)
	incomeGroup.Delete("/:id", ct.Delete)
}
