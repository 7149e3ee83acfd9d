package expenseController

import (
	"errors"
	"time"

	"fintrack/middleware"
	"fintrack/models"
	expenseValidator "fintrack/validators/expense"

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

// currentUser resolves the verified subject email set by the auth middleware
// to an account row.
func (ct *Controller) currentUser(c *fiber.Ctx) (*models.User, error) {
	email, _ := c.Locals("email").(string)

	var user models.User
	if err := ct.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func expensePayload(exp *models.Expense) fiber.Map {
	return fiber.Map{
		"id":          exp.ID,
		"amount":      exp.Amount,
		"category":    exp.Category,
		"description": exp.Description,
		"date":        exp.Date.Format("2006-01-02"),
	}
}

// List returns the user's expenses, optionally filtered to one calendar
// month via ?month=YYYY-MM.
func (ct *Controller) List(c *fiber.Ctx) error {
	user, err := ct.currentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
	}

	query := ct.db.Where("user_id = ?", user.ID).Order("date DESC")

	if month := c.Query("month"); month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Month must be in YYYY-MM format")
		}
		end := now.New(start).EndOfMonth()
		query = query.Where("date BETWEEN ? AND ?", start, end)
	}

	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	data := make([]fiber.Map, 0, len(expenses))
	for i := range expenses {
		data = append(data, expensePayload(&expenses[i]))
	}

	return middleware.SuccessResponse(c, fiber.StatusOK, "Expense list", fiber.Map{
		"data": data,
	})
}

func (ct *Controller) Create(c *fiber.Ctx) error {
	user, err := ct.currentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
	}

	reqData := c.Locals("validatedExpense").(*expenseValidator.ExpenseRequest)

	expense := models.Expense{
		UserID:      user.ID,
		Amount:      reqData.Amount,
		Category:    reqData.Category,
		Description: reqData.Description,
		Date:        reqData.ParsedDate,
	}

	if err := ct.db.Create(&expense).Error; err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	return middleware.SuccessResponse(c, fiber.StatusCreated, "Expense added successfully", fiber.Map{
		"data": expensePayload(&expense),
	})
}

func (ct *Controller) Update(c *fiber.Ctx) error {
	user, err := ct.currentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid expense id")
	}

	var expense models.Expense
	if err := ct.db.Where("id = ? AND user_id = ?", id, user.ID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "Expense not found")
		}
		return middleware.UnexpectedErrorResponse(c, err)
	}

	reqData := c.Locals("validatedExpense").(*expenseValidator.ExpenseRequest)

	expense.Amount = reqData.Amount
	expense.Category = reqData.Category
	expense.Description = reqData.Description
	expense.Date = reqData.ParsedDate

	if err := ct.db.Save(&expense).Error; err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	return middleware.SuccessResponse(c, fiber.StatusOK, "Expense updated successfully", fiber.Map{
		"data": expensePayload(&expense),
	})
}

func (ct *Controller) Delete(c *fiber.Ctx) error {
	user, err := ct.currentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid expense id")
	}

	result := ct.db.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Expense{})
	if result.Error != nil {
		return middleware.UnexpectedErrorResponse(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "Expense not found")
	}

	return middleware.SuccessResponse(c, fiber.StatusOK, "Expense deleted successfully", nil)
}
