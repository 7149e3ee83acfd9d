package authController_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/config"
	authController "fintrack/controllers/auth"
	"fintrack/database"
	"fintrack/mailer"
	"fintrack/models"
	authRoutes "fintrack/routers/authRoutes"
	"fintrack/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type recorderSender struct {
	mu   sync.Mutex
	msgs []mailer.Message
}

func (r *recorderSender) Send(msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorderSender) all() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.msgs...)
}

type testEnv struct {
	app  *fiber.App
	db   *gorm.DB
	mail *recorderSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config.LoadConfig()
	config.AppConfig.SaltRound = bcrypt.MinCost

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	rec := &recorderSender{}
	mail := mailer.NewWithSender(rec)
	t.Cleanup(mail.Close)

	app := fiber.New()
	authRoutes.SetupAuthRoutes(app, authController.New(db, token.NewIssuer(testSecret), mail))

	return &testEnv{app: app, db: db, mail: rec}
}

func (e *testEnv) post(t *testing.T, path string, body map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func validSignup() map[string]interface{} {
	return map[string]interface{}{
		"fullname":     "Alice Smith",
		"email":        "alice@example.com",
		"gender":       "female",
		"mobilenumber": "9876543210",
		"password":     "secret1pw",
	}
}

func (e *testEnv) signup(t *testing.T, body map[string]interface{}) {
	t.Helper()
	status, resp := e.post(t, "/auth/signup", body)
	require.Equal(t, http.StatusCreated, status, "signup failed: %v", resp)
}

func errorKeys(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	errs, ok := resp["errors"].(map[string]interface{})
	require.True(t, ok, "expected errors map in %v", resp)
	return errs
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		mutate   func(map[string]interface{})
		wantKeys []string
	}{
		{
			name:     "fullname too short",
			mutate:   func(b map[string]interface{}) { b["fullname"] = "Al" },
			wantKeys: []string{"fullname"},
		},
		{
			name:     "fullname with digits",
			mutate:   func(b map[string]interface{}) { b["fullname"] = "Alice 99" },
			wantKeys: []string{"fullname"},
		},
		{
			name:     "bad email",
			mutate:   func(b map[string]interface{}) { b["email"] = "not-an-email" },
			wantKeys: []string{"email"},
		},
		{
			name:     "mobile too short",
			mutate:   func(b map[string]interface{}) { b["mobilenumber"] = "12345" },
			wantKeys: []string{"mobilenumber"},
		},
		{
			name:     "password without digit",
			mutate:   func(b map[string]interface{}) { b["password"] = "onlyletters" },
			wantKeys: []string{"password"},
		},
		{
			name:     "password too short",
			mutate:   func(b map[string]interface{}) { b["password"] = "a1" },
			wantKeys: []string{"password"},
		},
		{
			name: "several defects reported together",
			mutate: func(b map[string]interface{}) {
				b["fullname"] = "Al"
				b["gender"] = ""
				b["password"] = "123456"
			},
			wantKeys: []string{"fullname", "gender", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validSignup()
			tt.mutate(body)

			status, resp := env.post(t, "/auth/signup", body)
			require.Equal(t, http.StatusBadRequest, status)

			errs := errorKeys(t, resp)
			assert.Len(t, errs, len(tt.wantKeys))
			for _, key := range tt.wantKeys {
				assert.Contains(t, errs, key)
			}
		})
	}
}

func TestSignupDuplicateEmailAndMobile(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, validSignup())

	t.Run("both conflicts in one response", func(t *testing.T) {
		body := validSignup()
		body["fullname"] = "Another Person"

		status, resp := env.post(t, "/auth/signup", body)
		require.Equal(t, http.StatusBadRequest, status)

		errs := errorKeys(t, resp)
		assert.Contains(t, errs, "email")
		assert.Contains(t, errs, "mobilenumber")
		assert.Len(t, errs, 2)
	})

	t.Run("email conflict alone", func(t *testing.T) {
		body := validSignup()
		body["mobilenumber"] = "9999999999"

		status, resp := env.post(t, "/auth/signup", body)
		require.Equal(t, http.StatusBadRequest, status)

		errs := errorKeys(t, resp)
		assert.Contains(t, errs, "email")
		assert.Len(t, errs, 1)
	})
}

func TestSignupSuccess(t *testing.T) {
	env := newTestEnv(t)

	status, resp := env.post(t, "/auth/signup", validSignup())
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "success", resp["status"])
	assert.NotZero(t, resp["user_id"])

	// Stored password is hashed, never plaintext.
	var user models.User
	require.NoError(t, env.db.Where("email = ?", "alice@example.com").First(&user).Error)
	assert.NotEqual(t, "secret1pw", user.Password)
}

func TestSigninDoesNotLeakWhichCredentialFailed(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, validSignup())

	statusWrongPw, respWrongPw := env.post(t, "/auth/signin", map[string]interface{}{
		"email": "alice@example.com", "password": "wrong1pw",
	})
	statusNoUser, respNoUser := env.post(t, "/auth/signin", map[string]interface{}{
		"email": "nobody@example.com", "password": "secret1pw",
	})

	assert.Equal(t, http.StatusUnauthorized, statusWrongPw)
	assert.Equal(t, http.StatusUnauthorized, statusNoUser)
	assert.Equal(t, "Invalid email or password", respWrongPw["message"])
	assert.Equal(t, respWrongPw["message"], respNoUser["message"])
}

func TestSigninSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, validSignup())

	status, resp := env.post(t, "/auth/signin", map[string]interface{}{
		"email": "alice@example.com", "password": "secret1pw",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, resp["access_token"])

	user, ok := resp["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Alice Smith", user["fullname"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, "female", user["gender"])

	// The session token verifies back to the account email.
	claims, err := token.NewIssuer(testSecret).Verify(resp["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, token.PurposeSession, claims.Purpose)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	status, resp := env.post(t, "/auth/forgot-password", map[string]interface{}{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", resp["message"])
}

func TestForgotPasswordStoresSecretAndMailsLink(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, validSignup())

	status, _ := env.post(t, "/auth/forgot-password", map[string]interface{}{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, status)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "alice@example.com").First(&user).Error)
	assert.Equal(t, models.ResetLink, user.ResetSecretKind)
	assert.NotEmpty(t, user.ResetSecret)
	require.NotNil(t, user.ResetSecretExpiry)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *user.ResetSecretExpiry, time.Minute)

	// Delivery is async with no ordering guarantee against the response.
	require.Eventually(t, func() bool {
		return len(env.mail.all()) == 1
	}, time.Second, 10*time.Millisecond)

	msg := env.mail.all()[0]
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Contains(t, msg.Body, "/reset-password?token=")

	// The mailed token is stored hashed, not verbatim.
	mailedToken := tokenFromBody(t, msg.Body)
	assert.NotEqual(t, mailedToken, user.ResetSecret)
	assert.Equal(t, models.HashResetToken(mailedToken), user.ResetSecret)
}

func tokenFromBody(t *testing.T, body string) string {
	t.Helper()
	_, after, found := strings.Cut(body, "token=")
	require.True(t, found, "no token in email body: %q", body)
	return after
}

// fetchOTP reads the outstanding one-time code straight from the store.
func fetchOTP(t *testing.T, db *gorm.DB, email string) string {
	t.Helper()
	var user models.User
	require.NoError(t, db.Where("email = ?", email).First(&user).Error)
	require.Equal(t, models.ResetOtp, user.ResetSecretKind)
	return user.ResetSecret
}

func TestSendOtp(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, validSignup())

	t.Run("unknown email", func(t *testing.T) {
		status, _ := env.post(t, "/auth/send-otp", map[string]interface{}{"email": "nobody@example.com"})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("stores code and mails it", func(t *testing.T) {
		status, _ := env.post(t, "/auth/send-otp", map[string]interface{}{"email": "alice@example.com"})
		require.Equal(t, http.StatusOK, status)

		otp := fetchOTP(t, env.db, "alice@example.com")
		assert.Len(t, otp, 6)

		require.Eventually(t, func() bool {
			msgs := env.mail.all()
			return len(msgs) > 0 && strings.Contains(msgs[len(msgs)-1].Body, otp)
		}, time.Second, 10*time.Millisecond)
	})
}

func TestVerifyOtp(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, validSignup())

	t.Run("nothing pending", func(t *testing.T) {
		status, resp := env.post(t, "/auth/verify-otp", map[string]interface{}{
			"email": "alice@example.com", "otp": "123456",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid OTP", resp["message"])
	})

	t.Run("wrong code", func(t *testing.T) {
		status, _ := env.post(t, "/auth/send-otp", map[string]interface{}{"email": "alice@example.com"})
		require.Equal(t, http.StatusOK, status)

		otp := fetchOTP(t, env.db, "alice@example.com")
		wrong := "000000"
		if otp == wrong {
			wrong = "000001"
		}

		status, resp := env.post(t, "/auth/verify-otp", map[string]interface{}{
			"email": "alice@example.com", "otp": wrong,
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid OTP", resp["message"])
	})

	t.Run("correct code after the window reports expiry", func(t *testing.T) {
		status, _ := env.post(t, "/auth/send-otp", map[string]interface{}{"email": "alice@example.com"})
		require.Equal(t, http.StatusOK, status)
		otp := fetchOTP(t, env.db, "alice@example.com")

		past := time.Now().Add(-time.Minute)
		require.NoError(t, env.db.Model(&models.User{}).
			Where("email = ?", "alice@example.com").
			Update("reset_secret_expiry", past).Error)

		status, resp := env.post(t, "/auth/verify-otp", map[string]interface{}{
			"email": "alice@example.com", "otp": otp,
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "OTP expired", resp["message"], "expiry must be distinct from mismatch")
	})

	t.Run("success returns reset token and consumes the code", func(t *testing.T) {
		status, _ := env.post(t, "/auth/send-otp", map[string]interface{}{"email": "alice@example.com"})
		require.Equal(t, http.StatusOK, status)
		otp := fetchOTP(t, env.db, "alice@example.com")

		status, resp := env.post(t, "/auth/verify-otp", map[string]interface{}{
			"email": "alice@example.com", "otp": otp,
		})
		require.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, resp["reset_token"])

		// The slot now holds the reset token, so the code is spent.
		status, _ = env.post(t, "/auth/verify-otp", map[string]interface{}{
			"email": "alice@example.com", "otp": otp,
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestSendOtpTwiceInvalidatesFirst(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, validSignup())

	status, _ := env.post(t, "/auth/send-otp", map[string]interface{}{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, status)
	first := fetchOTP(t, env.db, "alice@example.com")

	// Force the second draw to differ so the test is deterministic.
	for {
		status, _ = env.post(t, "/auth/send-otp", map[string]interface{}{"email": "alice@example.com"})
		require.Equal(t, http.StatusOK, status)
		if fetchOTP(t, env.db, "alice@example.com") != first {
			break
		}
	}
	second := fetchOTP(t, env.db, "alice@example.com")

	status, _ = env.post(t, "/auth/verify-otp", map[string]interface{}{
		"email": "alice@example.com", "otp": first,
	})
	assert.Equal(t, http.StatusUnauthorized, status, "superseded OTP must be rejected")

	status, resp := env.post(t, "/auth/verify-otp", map[string]interface{}{
		"email": "alice@example.com", "otp": second,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, resp["reset_token"])
}

func TestOtpResetRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, validSignup())

	status, _ := env.post(t, "/auth/send-otp", map[string]interface{}{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, status)
	otp := fetchOTP(t, env.db, "alice@example.com")

	status, resp := env.post(t, "/auth/verify-otp", map[string]interface{}{
		"email": "alice@example.com", "otp": otp,
	})
	require.Equal(t, http.StatusOK, status)
	resetToken := resp["reset_token"].(string)

	status, _ = env.post(t, "/auth/reset-password-with-otp", map[string]interface{}{
		"reset_token": resetToken, "new_password": "brand2new",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = env.post(t, "/auth/signin", map[string]interface{}{
		"email": "alice@example.com", "password": "secret1pw",
	})
	assert.Equal(t, http.StatusUnauthorized, status, "old password must stop working")

	status, _ = env.post(t, "/auth/signin", map[string]interface{}{
		"email": "alice@example.com", "password": "brand2new",
	})
	assert.Equal(t, http.StatusOK, status, "new password must sign in")

	// The reset secret slot is cleared; the token cannot be replayed.
	var user models.User
	require.NoError(t, env.db.Where("email = ?", "alice@example.com").First(&user).Error)
	assert.Equal(t, models.ResetNone, user.ResetSecretKind)
	assert.Nil(t, user.ResetSecretExpiry)

	status, _ = env.post(t, "/auth/reset-password-with-otp", map[string]interface{}{
		"reset_token": resetToken, "new_password": "again3new",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestForgotPasswordLinkRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, validSignup())

	status, _ := env.post(t, "/auth/forgot-password", map[string]interface{}{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, status)

	require.Eventually(t, func() bool {
		return len(env.mail.all()) == 1
	}, time.Second, 10*time.Millisecond)
	resetToken := tokenFromBody(t, env.mail.all()[0].Body)

	status, _ = env.post(t, "/auth/reset-password-with-otp", map[string]interface{}{
		"reset_token": resetToken, "new_password": "linked4pw",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = env.post(t, "/auth/signin", map[string]interface{}{
		"email": "alice@example.com", "password": "linked4pw",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestSupersededResetTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, validSignup())

	status, _ := env.post(t, "/auth/forgot-password", map[string]interface{}{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, status)

	// Token claims carry second-granularity timestamps; step past the
	// boundary so the second issuance is a distinct token.
	time.Sleep(1100 * time.Millisecond)

	status, _ = env.post(t, "/auth/forgot-password", map[string]interface{}{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, status)

	require.Eventually(t, func() bool {
		return len(env.mail.all()) == 2
	}, time.Second, 10*time.Millisecond)

	msgs := env.mail.all()
	firstToken := tokenFromBody(t, msgs[0].Body)
	secondToken := tokenFromBody(t, msgs[1].Body)
	require.NotEqual(t, firstToken, secondToken)

	status, _ = env.post(t, "/auth/reset-password-with-otp", map[string]interface{}{
		"reset_token": firstToken, "new_password": "stale5pw",
	})
	assert.Equal(t, http.StatusUnauthorized, status, "older token must die once a newer one is issued")

	status, _ = env.post(t, "/auth/reset-password-with-otp", map[string]interface{}{
		"reset_token": secondToken, "new_password": "fresh6pw",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestResetPasswordTokenChecks(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, validSignup())

	t.Run("garbage token", func(t *testing.T) {
		status, resp := env.post(t, "/auth/reset-password-with-otp", map[string]interface{}{
			"reset_token": "not-a-token", "new_password": "some7pass",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid or expired reset token", resp["message"])
	})

	t.Run("session token is not a reset token", func(t *testing.T) {
		sessionToken, err := token.NewIssuer(testSecret).Issue("alice@example.com", token.PurposeSession, token.SessionTTL)
		require.NoError(t, err)

		status, _ := env.post(t, "/auth/reset-password-with-otp", map[string]interface{}{
			"reset_token": sessionToken, "new_password": "some7pass",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("valid signature but unknown subject", func(t *testing.T) {
		resetToken, err := token.NewIssuer(testSecret).Issue("ghost@example.com", token.PurposeReset, token.ResetTTL)
		require.NoError(t, err)

		status, _ := env.post(t, "/auth/reset-password-with-otp", map[string]interface{}{
			"reset_token": resetToken, "new_password": "some7pass",
		})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("weak new password rejected", func(t *testing.T) {
		status, resp := env.post(t, "/auth/reset-password-with-otp", map[string]interface{}{
			"reset_token": "whatever", "new_password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, errorKeys(t, resp), "new_password")
	})
}
