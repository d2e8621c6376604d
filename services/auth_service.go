package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"near-expiry-api/models"
	"near-expiry-api/pkg/jwtutil"
	"near-expiry-api/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	otpTTL   = 10 * time.Minute
	resetTTL = time.Hour

	passwordSpecials = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"
)

type RegisterInput struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	FullName string          `json:"fullName"`
}

// AuthResult is what a successful login hands back
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	db          *gorm.DB
	users       *repository.UserRepository
	restaurants *repository.RestaurantRepository
	tokens      *repository.TokenRepository
	jwt         *jwtutil.Manager
	mailer      Mailer
	validate    *validator.Validate
	frontendURL string
	log         *zap.Logger
	now         func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	users *repository.UserRepository,
	restaurants *repository.RestaurantRepository,
	tokens *repository.TokenRepository,
	jwt *jwtutil.Manager,
	mailer Mailer,
	frontendURL string,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		db:          db,
		users:       users,
		restaurants: restaurants,
		tokens:      tokens,
		jwt:         jwt,
		mailer:      mailer,
		validate:    validator.New(),
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log.Named("auth"),
		now:         time.Now,
	}
}

// Register creates an unverified client or restaurant account and mails
// the first verification code.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" || in.Role == "" {
		return nil, validationf("Email, password, and role are required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, validationf("Invalid email format")
	}
	if msg := PasswordProblem(in.Password); msg != "" {
		return nil, validationf("%s", msg)
	}
	if in.Role != models.RoleClient && in.Role != models.RoleRestaurant {
		return nil, validationf("Role must be either %q or %q", models.RoleClient, models.RoleRestaurant)
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newError(ErrConflict, "User with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, err := generateOTP()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         in.Role,
		IsActive:     true,
	}
	err = repository.Transaction(ctx, s.db, s.log, "register", func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return s.tokens.WithTx(tx).ReplaceVerification(ctx, &models.EmailVerificationToken{
			UserID:    user.ID,
			OTPCode:   code,
			ExpiresAt: s.now().Add(otpTTL).UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.sendVerification(ctx, user.Email, code)
	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return user, nil
}

// VerifyEmail confirms the latest code issued to email
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return validationf("Email and OTP code are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return validationf("Invalid email or OTP code")
	}
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return validationf("Email is already verified")
	}

	token, err := s.tokens.LatestVerification(ctx, user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return validationf("No verification code found. Please request a new one.")
	}
	if err != nil {
		return err
	}
	if s.now().After(token.ExpiresAt) {
		return validationf("Verification code has expired. Please request a new one.")
	}
	if token.OTPCode != code {
		return validationf("Invalid verification code")
	}

	return repository.Transaction(ctx, s.db, s.log, "verify_email", func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).MarkEmailVerified(ctx, user.ID); err != nil {
			return err
		}
		return s.tokens.WithTx(tx).DeleteVerifications(ctx, user.ID)
	})
}

// ResendVerification issues a fresh code. Unknown emails succeed silently
// so the endpoint cannot be used to probe for accounts.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return validationf("Email is required")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return validationf("Email is already verified")
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	err = s.tokens.ReplaceVerification(ctx, &models.EmailVerificationToken{
		UserID:    user.ID,
		OTPCode:   code,
		ExpiresAt: s.now().Add(otpTTL).UTC(),
	})
	if err != nil {
		return err
	}
	s.sendVerification(ctx, user.Email, code)
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationf("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, newError(ErrUnauthorized, "Your account has been deactivated. Please contact support.")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, newError(ErrUnauthorized, "Invalid email or password")
	}
	if !user.EmailVerified {
		return nil, forbiddenf("Please verify your email before logging in")
	}

	token, err := s.jwt.Generate(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// ForgotPassword mails a one-hour reset link. Like ResendVerification it
// never reveals whether the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return validationf("Email is required")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	err = repository.Transaction(ctx, s.db, s.log, "forgot_password", func(tx *gorm.DB) error {
		return s.tokens.WithTx(tx).ReplaceReset(ctx, &models.PasswordResetToken{
			UserID:    user.ID,
			TokenHash: hashToken(token),
			ExpiresAt: s.now().Add(resetTTL).UTC(),
		})
	})
	if err != nil {
		return err
	}

	link := s.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		s.log.Warn("send password reset failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return validationf("Token and new password are required")
	}
	if msg := PasswordProblem(newPassword); msg != "" {
		return validationf("%s", msg)
	}

	stored, err := s.tokens.FindReset(ctx, hashToken(token))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return validationf("Invalid or expired reset token")
	}
	if err != nil {
		return err
	}
	if s.now().After(stored.ExpiresAt) {
		return validationf("Reset token has expired. Please request a new one.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return repository.Transaction(ctx, s.db, s.log, "reset_password", func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).UpdatePassword(ctx, stored.UserID, string(hash)); err != nil {
			return err
		}
		return s.tokens.WithTx(tx).DeleteResets(ctx, stored.UserID)
	})
}

// Me returns the user with their restaurant attached for restaurant accounts
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("User not found")
	}
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleRestaurant {
		if rest, err := s.restaurants.FindByUserID(ctx, user.ID); err == nil {
			user.Restaurant = rest
		}
	}
	return user, nil
}

// ActiveUser loads userID and requires the account to still be active
func (s *AuthService) ActiveUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrUnauthorized, "User not found")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, newError(ErrUnauthorized, "Your account has been deactivated")
	}
	return user, nil
}

// ParseToken validates a bearer token
func (s *AuthService) ParseToken(token string) (*jwtutil.Claims, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, newError(ErrUnauthorized, "Invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) sendVerification(ctx context.Context, to, code string) {
	if err := s.mailer.SendVerificationCode(ctx, to, code); err != nil {
		s.log.Warn("send verification code failed", zap.String("to", to), zap.Error(err))
	}
}

// PasswordProblem describes what a password lacks, or "" when it is strong
// enough: 8+ characters with upper, lower, digit and special.
func PasswordProblem(p string) string {
	if p == "" {
		return "Password is required"
	}
	var missing []string
	if len(p) < 8 {
		missing = append(missing, "at least 8 characters")
	}
	if !strings.ContainsAny(p, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		missing = append(missing, "one uppercase letter")
	}
	if !strings.ContainsAny(p, "abcdefghijklmnopqrstuvwxyz") {
		missing = append(missing, "one lowercase letter")
	}
	if !strings.ContainsAny(p, "0123456789") {
		missing = append(missing, "one number")
	}
	if !strings.ContainsAny(p, passwordSpecials) {
		missing = append(missing, "one special character ("+passwordSpecials+")")
	}
	if len(missing) == 0 {
		return ""
	}
	return "Password must contain " + strings.Join(missing, ", ")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
