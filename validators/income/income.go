package incomeValidator

import (
	"strings"
	"time"

	"fintrack/middleware"

	"github.com/gofiber/fiber/v2"
)

type IncomeRequest struct {
	Source      string  `json:"source"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	IncomeDate  string  `json:"income_date"`

	ParsedDate time.Time `json:"-"`
}

// Income validates create/update payloads. Errors are collected per field.
func Income() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(IncomeRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
		}

		reqData.Source = strings.TrimSpace(reqData.Source)
		reqData.Description = strings.TrimSpace(reqData.Description)

		errors := make(map[string]string)

		if reqData.Source == "" {
			errors["source"] = "Source is required"
		}
		if reqData.Amount <= 0 {
			errors["amount"] = "Amount must be > 0"
		}
		if reqData.IncomeDate == "" {
			errors["income_date"] = "Date is required"
		} else {
			parsed, err := time.Parse("2006-01-02", reqData.IncomeDate)
			if err != nil {
				errors["income_date"] = "Date must be in YYYY-MM-DD format"
			} else {
				reqData.ParsedDate = parsed
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedIncome", reqData)
		return c.Next()
	}
}
