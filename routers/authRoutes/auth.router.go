package authRoutes

import (
	authController "fintrack/controllers/auth"
	authValidator "fintrack/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, ct *authController.Controller) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidator.Signup(), ct.Signup)
	authGroup.Post("/signin", authValidator.Signin(), ct.Signin)
	authGroup.Post("/forgot-password", authValidator.Email(), ct.ForgotPassword)
	authGroup.Post("/send-otp", authValidator.Email(), ct.SendOtp)
	authGroup.Post("/verify-otp", authValidator.VerifyOtp(), ct.VerifyOtp)
	authGroup.Post("/reset-password-with-otp", authValidator.ResetPassword(), ct.ResetPasswordWithToken)
}
