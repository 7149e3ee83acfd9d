package expenseRoutes

import (
	expenseController "fintrack/controllers/expense"
	"fintrack/middleware"
	"fintrack/token"
	expenseValidator "fintrack/validators/expense"

	"github.com/gofiber/fiber/v2"
)

func SetupExpenseRoutes(app *fiber.App, tokens *token.Issuer, ct *expenseController.Controller) {
	expenseGroup := app.Group("/expense", middleware.RequireAuth(tokens))

	expenseGroup.Get("/", ct.List)
	expenseGroup.Post("/", expenseValidator.Expense(), ct.Create)
	expenseGroup.Put("/:id", expenseValidator.Expense(), ct.Update)
	expenseGroup.Delete("/:id", ct.Delete)
}
