package incomeController

import (
	"errors"
	"time"

	"fintrack/middleware"
	"fintrack/models"
	incomeValidator "fintrack/validators/income"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type Controller struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Controller {
	return &Controller{db: db}
}

func (ct *Controller) currentUser(c *fiber.Ctx) (*models.User, error) {
	email, _ := c.Locals("email").(string)

	var user models.User
	if err := ct.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func incomePayload(inc *models.Income) fiber.Map {
	return fiber.Map{
		"id":          inc.ID,
		"source":      inc.Source,
		"amount":      inc.Amount,
		"description": inc.Description,
		"income_date": inc.IncomeDate.Format("2006-01-02"),
	}
}

// List returns the user's income records, optionally filtered to one
// calendar month via ?month=YYYY-MM.
func (ct *Controller) List(c *fiber.Ctx) error {
	user, err := ct.currentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
	}

	query := ct.db.Where("user_id = ?", user.ID).Order("income_date DESC")

	if month := c.Query("month"); month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Month must be in YYYY-MM format")
		}
		end := now.New(start).EndOfMonth()
		query = query.Where("income_date BETWEEN ? AND ?", start, end)
	}

	var incomes []models.Income
	if err := query.Find(&incomes).Error; err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	data := make([]fiber.Map, 0, len(incomes))
	for i := range incomes {
		data = append(data, incomePayload(&incomes[i]))
	}

	return middleware.SuccessResponse(c, fiber.StatusOK, "Income list", fiber.Map{
		"data": data,
	})
}

func (ct *Controller) Create(c *fiber.Ctx) error {
	user, err := ct.currentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
	}

	reqData := c.Locals("validatedIncome").(*incomeValidator.IncomeRequest)

	income := models.Income{
		UserID:      user.ID,
		Source:      reqData.Source,
		Amount:      reqData.Amount,
		Description: reqData.Description,
		IncomeDate:  reqData.ParsedDate,
	}

	if err := ct.db.Create(&income).Error; err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	return middleware.SuccessResponse(c, fiber.StatusCreated, "Income added successfully", fiber.Map{
		"data": incomePayload(&income),
	})
}

func (ct *Controller) Update(c *fiber.Ctx) error {
	user, err := ct.currentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid income id")
	}

	var income models.Income
	if err := ct.db.Where("id = ? AND user_id = ?", id, user.ID).First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "Income not found")
		}
		return middleware.UnexpectedErrorResponse(c, err)
	}

	reqData := c.Locals("validatedIncome").(*incomeValidator.IncomeRequest)

	income.Source = reqData.Source
	income.Amount = reqData.Amount
	income.Description = reqData.Description
	income.IncomeDate = reqData.ParsedDate

	if err := ct.db.Save(&income).Error; err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	return middleware.SuccessResponse(c, fiber.StatusOK, "Income updated successfully", fiber.Map{
		"data": incomePayload(&income),
	})
}

func (ct *Controller) Delete(c *fiber.Ctx) error {
	user, err := ct.currentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid income id")
	}

	result := ct.db.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Income{})
	if result.Error != nil {
		return middleware.UnexpectedErrorResponse(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "Income not found")
	}

	return middleware.SuccessResponse(c, fiber.StatusOK, "Income deleted successfully", nil)
}
