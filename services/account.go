package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"coursehub/apperror"
	"coursehub/database"
	"coursehub/models"
	"coursehub/validators"
)

// UserStore is the data access the account workflow needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ConsumeVerificationToken(ctx context.Context, token string) (*models.User, error)
	MarkVerificationEmailSent(ctx context.Context, id uint) error
	PendingVerificationEmails(ctx context.Context, createdBefore time.Time, limit int) ([]models.User, error)
}

// Mailer delivers the verification email.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, name, token string) error
}

type RegisterInput struct {
	FullName string `json:"fullName" validate:"required,notblank,max=100"`
	Username string `json:"username" validate:"required,notblank,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,alpha,max=32"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

const invalidCredentials = "Invalid email or password!"

// ResendGrace is how old a pending registration must be before the
// scheduler retries its email, so a first send still in flight is not doubled.
const ResendGrace = 2 * time.Minute

// AccountService runs registration, login and email verification.
type AccountService struct {
	users       UserStore
	credentials *CredentialService
	mailer      Mailer
	dummyHash   string
	now         func() time.Time
}

func NewAccountService(users UserStore, credentials *CredentialService, mailer Mailer) *AccountService {
	// compared against when the email is unknown so both login failures cost the same
	dummyHash, _ := credentials.HashPassword("coursehub-dummy-password")

	return &AccountService{
		users:       users,
		credentials: credentials,
		mailer:      mailer,
		dummyHash:   dummyHash,
		now:         time.Now,
	}
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified user and emails the verification link.
// When the email cannot be sent the user is kept and an internal error is
// returned; the verification scheduler retries the email later.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)

	if fields := validators.Struct(in); fields != nil {
		return nil, apperror.Validation("Validation failed!", fields)
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict("Email is already registered!")
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, apperror.Internal("Failed to register user!", err)
	}

	hashed, err := s.credentials.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("Failed to process your request!", err)
	}

	token := s.credentials.GenerateVerificationToken()
	role := strings.ToUpper(in.Role)
	if role == "" {
		role = "USER"
	}

	user := &models.User{
		FullName:          in.FullName,
		Username:          in.Username,
		Email:             in.Email,
		Password:          hashed,
		Role:              role,
		IsVerified:        false,
		VerificationToken: &token,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent registration can pass the check above
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperror.Conflict("Email is already registered!")
		}
		return nil, apperror.Internal("Failed to register user!", err)
	}

	if err := s.sendVerification(ctx, user); err != nil {
		return user, apperror.Internal("User created but the verification email could not be sent!", err)
	}

	return user, nil
}

// Login returns a signed token for a verified user.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (string, error) {
	in.Email = NormalizeEmail(in.Email)
	if fields := validators.Struct(in); fields != nil {
		return "", apperror.Validation("Validation failed!", fields)
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.credentials.VerifyPassword(in.Password, s.dummyHash)
			return "", apperror.Auth(invalidCredentials)
		}
		return "", apperror.Internal("Failed to process your request!", err)
	}

	if !s.credentials.VerifyPassword(in.Password, user.Password) {
		return "", apperror.Auth(invalidCredentials)
	}

	if !user.IsVerified {
		return "", apperror.Forbidden("Email not verified!")
	}

	token, err := s.credentials.IssueToken(user.ID)
	if err != nil {
		return "", apperror.Internal("Failed to generate token!", err)
	}

	log.Printf("User %d logged in", user.ID)
	return token, nil
}

// VerifyEmail consumes a verification token. Each token works once.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.ValidationField("token", "Verification token is required!")
	}

	user, err := s.users.ConsumeVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperror.InvalidToken("Invalid or already used verification token!")
		}
		return nil, apperror.Internal("Failed to verify email!", err)
	}

	return user, nil
}

// ResendPendingVerifications sends the verification email to up to batch
// unverified users whose first attempt failed at least ResendGrace ago.
// It returns how many were sent.
func (s *AccountService) ResendPendingVerifications(ctx context.Context, batch int) (int, error) {
	users, err := s.users.PendingVerificationEmails(ctx, s.now().Add(-ResendGrace), batch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range users {
		if err := s.sendVerification(ctx, &users[i]); err != nil {
			log.Printf("[VERIFY-SCHEDULER] Resend to user %d failed: %v", users[i].ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *AccountService) sendVerification(ctx context.Context, user *models.User) error {
	if user.VerificationToken == nil {
		return nil
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.FullName, *user.VerificationToken); err != nil {
		log.Printf("[MAIL] Verification email to user %d failed: %v", user.ID, err)
		return err
	}

	if err := s.users.MarkVerificationEmailSent(ctx, user.ID); err != nil {
		log.Printf("[MAIL] Could not flag verification email for user %d: %v", user.ID, err)
	}
	user.VerificationEmailSent = true
	return nil
}
