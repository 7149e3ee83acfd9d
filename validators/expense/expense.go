package expenseValidator

import (
	"strings"
	"time"

	"fintrack/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExpenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`

	// ParsedDate is filled in after validation.
	ParsedDate time.Time `json:"-"`
}

// Expense validates create/update payloads. Errors are collected per field.
func Expense() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ExpenseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
		}

		reqData.Category = strings.TrimSpace(reqData.Category)
		reqData.Description = strings.TrimSpace(reqData.Description)

		errors := make(map[string]string)

		if reqData.Amount <= 0 {
			errors["amount"] = "Amount must be > 0"
		}
		if reqData.Category == "" {
			errors["category"] = "Category is required"
		}
		if reqData.Date == "" {
			errors["date"] = "Date is required"
		} else {
			parsed, err := time.Parse("2006-01-02", reqData.Date)
			if err != nil {
				errors["date"] = "Date must be in YYYY-MM-DD format"
			} else {
				reqData.ParsedDate = parsed
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedExpense", reqData)
		return c.Next()
	}
}
