package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cesizen/internal/domain"
	"cesizen/internal/email"
	"cesizen/internal/repository"
)

// UserService coordina reglas de negocio para cuentas de usuario.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	emailSender email.Sender
	otpLimiter  OTPRateLimiter
	otpAttempts OTPRateLimiter
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender, otpLimiter OTPRateLimiter) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emailSender == nil {
		emailSender = email.NewDisabledSender("")
	}
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(otpTTL, 3)
	}
	return &UserService{
		logger:      logger,
		users:       users,
		emailSender: emailSender,
		otpLimiter:  otpLimiter,
		otpAttempts: NewOTPRateLimiter(otpTTL, maxOTPAttempts),
	}
}

// WithOTPAttemptLimiter reemplaza el contador de codigos fallidos, por ejemplo por uno en Redis.
func (s *UserService) WithOTPAttemptLimiter(limiter OTPRateLimiter) *UserService {
	if limiter != nil {
		s.otpAttempts = limiter
	}
	return s
}

type CreateUserInput struct {
	Email       string
	DisplayName string
	Password    string
	Role        domain.Role
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrOTPNotRequested    = errors.New("otp not requested")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must have at least 8 characters, one letter and one digit")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidRole        = errors.New("invalid role")
	errUserSvcNotReady    = errors.New("user service not configured")
)

const (
	otpTTL            = 10 * time.Minute
	maxOTPAttempts    = 5
	minPasswordLength = 8
)

// CreateUser registra una cuenta con contraseña. El rol por defecto es USER.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUserSvcNotReady
	}

	emailAddr := normalizeEmail(input.Email)
	if !looksLikeEmail(emailAddr) {
		return domain.User{}, ErrInvalidEmail
	}
	if err := validatePassword(input.Password); err != nil {
		return domain.User{}, err
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Role:         role,
		Active:       true,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUserSvcNotReady
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if !user.Active {
		return domain.User{}, ErrAccountDisabled
	}
	return user, nil
}

// RequestOTP envia un codigo de verificacion de email a una cuenta existente.
func (s *UserService) RequestOTP(ctx context.Context, emailAddr string) (domain.User, error) {
	user, err := s.lookupForOTP(ctx, emailAddr)
	if err != nil {
		return domain.User{}, err
	}
	expiresAt, err := s.issueOTP(ctx, user, s.emailSender.SendVerificationOTP)
	if err != nil {
		return domain.User{}, err
	}
	user.OtpExpiresAt = &expiresAt
	return user, nil
}

func (s *UserService) VerifyOTP(ctx context.Context, emailAddr, code string) (domain.User, error) {
	user, err := s.checkOTP(ctx, emailAddr, code)
	if err != nil {
		return domain.User{}, err
	}

	verifiedAt := time.Now().UTC()
	if err := s.users.VerifyEmail(ctx, user.ID, verifiedAt); err != nil {
		return domain.User{}, err
	}

	user.EmailVerifiedAt = &verifiedAt
	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	return user, nil
}

// RequestPasswordReset envia un codigo de reinicio. Un email desconocido no es un error
// para no revelar que cuentas existen.
func (s *UserService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.lookupForOTP(ctx, emailAddr)
	if errors.Is(err, ErrUserNotFound) {
		s.logger.Info("password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.issueOTP(ctx, user, s.emailSender.SendPasswordReset)
	return err
}

func (s *UserService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.checkOTP(ctx, emailAddr, code)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hash), time.Now().UTC())
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUserSvcNotReady
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) GetProfileByEmail(ctx context.Context, emailAddr string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUserSvcNotReady
	}
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, userID, displayName string) (domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	now := time.Now().UTC()
	user.DisplayName = strings.TrimSpace(displayName)
	user.UpdatedAt = now
	if err := s.users.UpdateProfile(ctx, userID, user.DisplayName, now); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, string(hash), time.Now().UTC())
}

// DeleteAccount borra la cuenta y, en cascada, su historial.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if s.users == nil {
		return errUserSvcNotReady
	}
	err := s.users.Delete(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	if err == nil {
		s.logger.Info("account deleted", zap.String("user_id", userID))
	}
	return err
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if s.users == nil {
		return nil, errUserSvcNotReady
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}

func (s *UserService) SetActive(ctx context.Context, userID string, active bool) error {
	if s.users == nil {
		return errUserSvcNotReady
	}
	err := s.users.SetActive(ctx, userID, active, time.Now().UTC())
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

func (s *UserService) SetRole(ctx context.Context, userID string, role domain.Role) error {
	if s.users == nil {
		return errUserSvcNotReady
	}
	if !role.Valid() {
		return ErrInvalidRole
	}
	err := s.users.SetRole(ctx, userID, role, time.Now().UTC())
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

func (s *UserService) lookupForOTP(ctx context.Context, emailAddr string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUserSvcNotReady
	}
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if s.otpLimiter != nil && !s.otpLimiter.Allow(emailAddr) {
		return domain.User{}, ErrRateLimited
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

type otpSendFunc func(ctx context.Context, toEmail, code string, expiresAt time.Time) error

func (s *UserService) issueOTP(ctx context.Context, user domain.User, send otpSendFunc) (time.Time, error) {
	code, hash, expiresAt, err := generateOTP()
	if err != nil {
		return time.Time{}, err
	}
	if err := s.users.UpdateOTP(ctx, user.ID, hash, expiresAt); err != nil {
		return time.Time{}, err
	}
	if err := send(ctx, user.Email, code, expiresAt); err != nil {
		s.logger.Warn("send otp email failed", zap.Error(err), zap.String("user_id", user.ID))
		return time.Time{}, fmt.Errorf("%w: %v", ErrEmailSendFailure, err)
	}
	return expiresAt, nil
}

func (s *UserService) checkOTP(ctx context.Context, emailAddr, code string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUserSvcNotReady
	}
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if !isValidOTPCode(code) {
		return domain.User{}, ErrOTPInvalid
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if user.OtpCodeHash == "" || user.OtpExpiresAt == nil {
		return domain.User{}, ErrOTPNotRequested
	}
	if time.Now().UTC().After(*user.OtpExpiresAt) {
		return domain.User{}, ErrOTPExpired
	}
	if !verifyOTP(code, user.OtpCodeHash) {
		if s.otpAttempts != nil && !s.otpAttempts.Allow("verify:"+emailAddr) {
			s.burnOTP(ctx, user)
			return domain.User{}, ErrRateLimited
		}
		return domain.User{}, ErrOTPInvalid
	}
	return user, nil
}

// burnOTP invalida el codigo vigente tras demasiados intentos fallidos.
func (s *UserService) burnOTP(ctx context.Context, user domain.User) {
	if err := s.users.UpdateOTP(ctx, user.ID, "", time.Now().UTC()); err != nil {
		s.logger.Warn("invalidate otp failed", zap.Error(err), zap.String("user_id", user.ID))
		return
	}
	s.logger.Warn("otp invalidated after failed attempts", zap.String("user_id", user.ID))
}

func generateOTP() (string, string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", time.Time{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", time.Time{}, err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])

	expiresAt := time.Now().UTC().Add(otpTTL)
	return code, saltStr + ":" + hash, expiresAt, nil
}

func verifyOTP(code, stored string) bool {
	saltStr, expectedHash, ok := strings.Cut(stored, ":")
	if !ok {
		return false
	}
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func looksLikeEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
