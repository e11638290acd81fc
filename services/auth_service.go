// services/auth_service.go
package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"time"

	"social-events-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// phoneRegex accepts E.164-style numbers: +, country code, 6-14 digits.
var phoneRegex = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

var nameRegex = regexp.MustCompile(`^[\p{L}][\p{L} '\-]*$`)

const verifyCodeTTL = 10 * time.Minute

type AuthService struct {
	DB        *gorm.DB
	Verify    *VerifyClient // nil → local code mode
	JWTSecret []byte
	TokenTTL  time.Duration
}

func NewAuthService(db *gorm.DB, verify *VerifyClient, jwtSecret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		DB:        db,
		Verify:    verify,
		JWTSecret: jwtSecret,
		TokenTTL:  tokenTTL,
	}
}

type registerRequest struct {
	Phone     string  `json:"phone"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Bio       *string `json:"bio,omitempty"`
	City      *string `json:"city,omitempty"`
}

// Register creates the user row plus its PhoneAuth row in one transaction.
func (s *AuthService) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	if !phoneRegex.MatchString(req.Phone) {
		return c.Status(422).JSON(fiber.Map{"error": "invalid phone number, expected E.164 format"})
	}
	if req.FirstName == "" || len(req.FirstName) > 20 || !nameRegex.MatchString(req.FirstName) {
		return c.Status(422).JSON(fiber.Map{"error": "invalid first name"})
	}
	if req.LastName == "" || len(req.LastName) > 40 || !nameRegex.MatchString(req.LastName) {
		return c.Status(422).JSON(fiber.Map{"error": "invalid last name"})
	}
	if req.Bio != nil && len(*req.Bio) > 500 {
		return c.Status(422).JSON(fiber.Map{"error": "bio too long (max 500)"})
	}

	user := models.User{
		Phone:     req.Phone,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		City:      req.City,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.PhoneAuth{Phone: req.Phone}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(409).JSON(fiber.Map{"error": "phone number already registered"})
		}
		log.Printf("❌ [AUTH] Register failed for %s: %v", req.Phone, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to register user"})
	}

	log.Printf("✅ [AUTH] Registered user %d (%s)", user.ID, user.Phone)
	return c.Status(201).JSON(user)
}

// RequestCode sends a verification code to a registered phone number.
// With Twilio configured the code lives on Twilio's side; otherwise a local
// code is generated, bcrypt-hashed and stored with a short expiry.
func (s *AuthService) RequestCode(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var auth models.PhoneAuth
	if err := s.DB.First(&auth, "phone = ?", req.Phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "phone number not registered"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	if s.Verify != nil {
		status, err := s.Verify.StartVerification(req.Phone)
		if err != nil {
			log.Printf("❌ [AUTH] Could not send verify code to %s: %v", req.Phone, err)
			return c.Status(502).JSON(fiber.Map{"error": "could not send verification code"})
		}
		log.Printf("📱 [AUTH] Verification started for %s (status=%s)", req.Phone, status)
		return c.JSON(fiber.Map{"message": "verification code sent"})
	}

	code, err := generateVerifyCode()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate code"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to store code"})
	}

	expires := time.Now().Add(verifyCodeTTL)
	auth.CodeHash = string(hash)
	auth.ExpiresAt = &expires
	if err := s.DB.Save(&auth).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to store code"})
	}

	// Local mode has no SMS provider; the code lands in the server log.
	log.Printf("📱 [AUTH] Local verify code for %s: %s", req.Phone, code)
	return c.JSON(fiber.Map{"message": "verification code sent"})
}

// Token exchanges a valid (phone, code) pair for a signed access token.
func (s *AuthService) Token(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var user models.User
	if err := s.DB.First(&user, "phone = ?", req.Phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "phone number not registered"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	ok, err := s.checkCode(req.Phone, req.Code)
	if err != nil {
		log.Printf("❌ [AUTH] Code check failed for %s: %v", req.Phone, err)
		return c.Status(502).JSON(fiber.Map{"error": "could not check verification code"})
	}
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "invalid verification code"})
	}

	token, err := s.GenerateAccessToken(&user)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to issue token"})
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *AuthService) checkCode(phone, code string) (bool, error) {
	if s.Verify != nil {
		return s.Verify.CheckVerification(phone, code)
	}

	var auth models.PhoneAuth
	if err := s.DB.First(&auth, "phone = ?", phone).Error; err != nil {
		return false, err
	}
	if auth.CodeHash == "" || auth.ExpiresAt == nil || time.Now().After(*auth.ExpiresAt) {
		return false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(auth.CodeHash), []byte(code)) != nil {
		return false, nil
	}

	// One-shot: consume the code so it cannot be replayed.
	auth.CodeHash = ""
	auth.ExpiresAt = nil
	return true, s.DB.Save(&auth).Error
}

// GenerateAccessToken signs an HS256 JWT with the user id as subject.
func (s *AuthService) GenerateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   fmt.Sprintf("%d", user.ID),
		"phone": user.Phone,
		"iat":   now.Unix(),
		"exp":   now.Add(s.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.JWTSecret)
}

// CleanupExpiredCodes drops stale local verify codes. Called from the
// scheduler.
func (s *AuthService) CleanupExpiredCodes() {
	res := s.DB.Model(&models.PhoneAuth{}).
		Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
		Updates(map[string]interface{}{"code_hash": "", "expires_at": nil})
	if res.Error != nil {
		log.Printf("[Scheduler] Verify code cleanup failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("🧹 [AUTH] Cleared %d expired verify codes", res.RowsAffected)
	}
}

func generateVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
