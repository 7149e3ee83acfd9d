package authController

import (
	"errors"
	"fmt"
	"time"

	"fintrack/config"
	"fintrack/mailer"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/token"
	"fintrack/utils"
	authValidator "fintrack/validators/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Controller ties credential hashing, token issuing, OTP generation and the
// notification queue into the signup/signin/reset flows.
type Controller struct {
	db     *gorm.DB
	tokens *token.Issuer
	mail   *mailer.Mailer
}

func New(db *gorm.DB, tokens *token.Issuer, mail *mailer.Mailer) *Controller {
	return &Controller{db: db, tokens: tokens, mail: mail}
}

func (ct *Controller) findUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := ct.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Signup registers a new account. Shape validation already ran in the
// validator middleware; uniqueness of email and mobile is checked here
// independently so both conflicts surface in one response.
func (ct *Controller) Signup(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.SignupRequest)

	conflicts := make(map[string]string)

	if err := ct.db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		conflicts["email"] = "Email already registered"
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	if err := ct.db.Where("mobile_number = ?", reqData.MobileNumber).First(&models.User{}).Error; err == nil {
		conflicts["mobilenumber"] = "Mobile number already registered"
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	if len(conflicts) > 0 {
		return middleware.ValidationErrorResponse(c, conflicts)
	}

	hashedPassword, err := utils.HashPassword(reqData.Password)
	if err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	newUser := models.User{
		FullName:     reqData.FullName,
		Email:        reqData.Email,
		Gender:       reqData.Gender,
		MobileNumber: reqData.MobileNumber,
		Password:     hashedPassword,
	}

	if err := ct.db.Create(&newUser).Error; err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	return middleware.SuccessResponse(c, fiber.StatusCreated, "User registered successfully", fiber.Map{
		"user_id": newUser.ID,
	})
}

// Signin authenticates by email and password. Unknown email and wrong
// password produce the same response so neither case is distinguishable.
func (ct *Controller) Signin(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.SigninRequest)

	user, err := ct.findUserByEmail(reqData.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		return middleware.UnexpectedErrorResponse(c, err)
	}

	if !utils.CheckPassword(reqData.Password, user.Password) {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	accessToken, err := ct.tokens.Issue(user.Email, token.PurposeSession, token.SessionTTL)
	if err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	return middleware.SuccessResponse(c, fiber.StatusOK, "Login successful", fiber.Map{
		"access_token": accessToken,
		"user": fiber.Map{
			"id":       user.ID,
			"fullname": user.FullName,
			"email":    user.Email,
			"gender":   user.Gender,
		},
	})
}

// ForgotPassword issues a reset-link token. The token hash lands in the
// account's single reset-secret slot, replacing whatever was there.
func (ct *Controller) ForgotPassword(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.EmailRequest)

	user, err := ct.findUserByEmail(reqData.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
		}
		return middleware.UnexpectedErrorResponse(c, err)
	}

	resetToken, err := ct.tokens.Issue(user.Email, token.PurposeReset, token.ResetTTL)
	if err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	if err := ct.storeResetSecret(user, models.ResetLink, models.HashResetToken(resetToken), token.ResetTTL); err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", config.AppConfig.FrontendURL, resetToken)
	ct.mail.Enqueue(user.Email, "Password Reset Request", "Click to reset password: "+resetLink)

	return middleware.SuccessResponse(c, fiber.StatusOK, "Password reset link sent!", nil)
}

// SendOtp stores a fresh one-time code in the reset-secret slot and mails it.
// A second call invalidates the first code.
func (ct *Controller) SendOtp(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.EmailRequest)

	user, err := ct.findUserByEmail(reqData.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
		}
		return middleware.UnexpectedErrorResponse(c, err)
	}

	otp := utils.GenerateOTP()

	if err := ct.storeResetSecret(user, models.ResetOtp, otp, token.OtpTTL); err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	ct.mail.Enqueue(user.Email, "OTP for Password Reset", "Your OTP is "+otp)

	return middleware.SuccessResponse(c, fiber.StatusOK, "OTP sent to your email", nil)
}

// VerifyOtp redeems a one-time code. On success the slot is overwritten with
// a short-lived reset token, so a code can only be redeemed once.
func (ct *Controller) VerifyOtp(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.VerifyOtpRequest)

	user, err := ct.findUserByEmail(reqData.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
		}
		return middleware.UnexpectedErrorResponse(c, err)
	}

	if user.ResetSecretKind != models.ResetOtp || user.ResetSecret != reqData.Otp {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid OTP")
	}

	if user.ResetSecretExpired(time.Now()) {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "OTP expired")
	}

	resetToken, err := ct.tokens.Issue(user.Email, token.PurposeReset, token.ResetTTL)
	if err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	if err := ct.storeResetSecret(user, models.ResetLink, models.HashResetToken(resetToken), token.ResetTTL); err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	return middleware.SuccessResponse(c, fiber.StatusOK, "OTP verified", fiber.Map{
		"reset_token": resetToken,
	})
}

// ResetPasswordWithToken consumes a reset token from either recovery path.
// The token must carry a valid signature AND match the account's stored
// reset secret, so older tokens die the moment a newer one is issued.
func (ct *Controller) ResetPasswordWithToken(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.ResetPasswordRequest)

	claims, err := ct.tokens.Verify(reqData.ResetToken)
	if err != nil || claims.Purpose != token.PurposeReset {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired reset token")
	}

	user, err := ct.findUserByEmail(claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found")
		}
		return middleware.UnexpectedErrorResponse(c, err)
	}

	if user.ResetSecretKind != models.ResetLink ||
		user.ResetSecret != models.HashResetToken(reqData.ResetToken) ||
		user.ResetSecretExpired(time.Now()) {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired reset token")
	}

	hashedPassword, err := utils.HashPassword(reqData.NewPassword)
	if err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	updates := map[string]interface{}{
		"password":            hashedPassword,
		"reset_secret_kind":   models.ResetNone,
		"reset_secret":        "",
		"reset_secret_expiry": nil,
	}
	if err := ct.db.Model(user).Updates(updates).Error; err != nil {
		return middleware.UnexpectedErrorResponse(c, err)
	}

	return middleware.SuccessResponse(c, fiber.StatusOK, "Password reset successfully", nil)
}

// storeResetSecret overwrites the account's reset-secret slot. Last writer
// wins; concurrent requests are not serialized.
func (ct *Controller) storeResetSecret(user *models.User, kind, secret string, ttl time.Duration) error {
	expiry := time.Now().Add(ttl)

	return ct.db.Model(user).Updates(map[string]interface{}{
		"reset_secret_kind":   kind,
		"reset_secret":        secret,
		"reset_secret_expiry": expiry,
	}).Error
}
