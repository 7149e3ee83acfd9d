package authValidator

import (
	"regexp"
	"strings"

	"fintrack/middleware"

	"github.com/gofiber/fiber/v2"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobileRe   = regexp.MustCompile(`^\d{10}$`)
	fullnameRe = regexp.MustCompile(`^[A-Za-z\s]+$`)
	letterRe   = regexp.MustCompile(`[A-Za-z]`)
	digitRe    = regexp.MustCompile(`\d`)
)

func isValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func isValidMobile(mobile string) bool {
	return mobileRe.MatchString(mobile)
}

// validatePassword applies the signup password rule and records any failure
// under the given field key.
func validatePassword(errors map[string]string, field, password string) {
	if len(password) < 6 {
		errors[field] = "Password must be at least 6 characters"
	} else if !letterRe.MatchString(password) || !digitRe.MatchString(password) {
		errors[field] = "Password must contain at least 1 letter and 1 number"
	}
}

type SignupRequest struct {
	FullName     string `json:"fullname"`
	Email        string `json:"email"`
	Gender       string `json:"gender"`
	MobileNumber string `json:"mobilenumber"`
	Password     string `json:"password"`
}

// Signup validator middleware. Collects every field error into one response
// instead of failing fast.
func Signup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SignupRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
		}

		reqData.FullName = strings.TrimSpace(reqData.FullName)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		reqData.Gender = strings.TrimSpace(reqData.Gender)
		reqData.MobileNumber = strings.TrimSpace(reqData.MobileNumber)

		errors := make(map[string]string)

		if len(reqData.FullName) < 3 || len(reqData.FullName) > 100 {
			errors["fullname"] = "Full name must be 3-100 characters"
		} else if !fullnameRe.MatchString(reqData.FullName) {
			errors["fullname"] = "Full name can only contain letters and spaces"
		}

		if !isValidEmail(reqData.Email) {
			errors["email"] = "Valid email is required"
		}

		if reqData.Gender == "" {
			errors["gender"] = "Gender is required"
		}

		if !isValidMobile(reqData.MobileNumber) {
			errors["mobilenumber"] = "Valid 10-digit mobile number is required"
		}

		validatePassword(errors, "password", reqData.Password)

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signin validator middleware
func Signin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SigninRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
		}

		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

		if reqData.Email == "" || reqData.Password == "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Email and password are required")
		}

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

type EmailRequest struct {
	Email string `json:"email"`
}

// Email validates the single-email requests (forgot-password, send-otp).
func Email() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(EmailRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
		}

		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

		if !isValidEmail(reqData.Email) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Valid email is required")
		}

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

type VerifyOtpRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

// VerifyOtp validator middleware
func VerifyOtp() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(VerifyOtpRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
		}

		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		reqData.Otp = strings.TrimSpace(reqData.Otp)

		if reqData.Email == "" || reqData.Otp == "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Email and OTP are required")
		}

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword validator middleware. The new password is held to the same
// rule as signup.
func ResetPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ResetPasswordRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
		}

		if reqData.ResetToken == "" || reqData.NewPassword == "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Reset token and new password required")
		}

		errors := make(map[string]string)
		validatePassword(errors, "new_password", reqData.NewPassword)
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}
