package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/api-profiles/internal/domain/entity"
	repo "github.com/oksasatya/api-profiles/internal/domain/repository"
	"github.com/oksasatya/api-profiles/pkg/helpers"
	"github.com/oksasatya/api-profiles/pkg/validation"
)

var (
	ErrEmailExists        = errors.New("user with this email already exists")
	ErrUnknownEmail       = errors.New("user with this email does not exist")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrOTPSent            = errors.New("OTP sent to your email")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("you do not have permission to access this profile")
)

// NormalizeEmail lowers the address to its canonical form used for storage,
// lookup and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Service struct {
	Repo       repo.UserRepository
	OTP        *OTPStore
	Dispatcher *OTPDispatcher
	JWT        *helpers.JWTManager
	Logger     *logrus.Logger
}

func NewService(r repo.UserRepository, otp *OTPStore, dispatcher *OTPDispatcher, jwt *helpers.JWTManager, logger *logrus.Logger) *Service {
	return &Service{
		Repo:       r,
		OTP:        otp,
		Dispatcher: dispatcher,
		JWT:        jwt,
		Logger:     logger,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	OTP       string
}

type LoginInput struct {
	Email    string
	Password string
	OTP      string
}

// otpGate runs the shared OTP step of registration and login. When no code
// was submitted it dispatches a fresh one and reports ErrOTPSent; the caller
// is expected to resubmit the same request with the code.
func (s *Service) otpGate(ctx context.Context, email, submitted string) error {
	if submitted == "" {
		if err := s.Dispatcher.Dispatch(ctx, email); err != nil {
			return err
		}
		return ErrOTPSent
	}
	ok, err := s.OTP.Verify(ctx, email, submitted)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}
	return nil
}

// Register creates a new account. Field validation runs before the OTP gate
// so a code is never dispatched for a request that would be rejected anyway.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, string, error) {
	email := NormalizeEmail(in.Email)

	exists, err := s.Repo.ExistsByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrEmailExists
	}

	if err := validation.Password(in.Password); err != nil {
		return nil, "", err
	}
	if err := validation.Name("first_name", in.FirstName); err != nil {
		return nil, "", err
	}
	if err := validation.Name("last_name", in.LastName); err != nil {
		return nil, "", err
	}

	if err := s.otpGate(ctx, email, in.OTP); err != nil {
		return nil, "", err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	u := &entity.User{
		Email:     email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  true,
	}
	if err := s.Repo.Create(u); err != nil {
		// A racing insert beat the uniqueness pre-check.
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, "", ErrEmailExists
		}
		return nil, "", err
	}

	token, _, err := s.JWT.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}

	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user registered")
	}
	return u, token, nil
}

// Authenticate validates email/password and the account's active flag.
// An inactive account fails with the same error as a wrong password so the
// login path does not reveal whether an account has been disabled.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates an existing account. Credentials are checked before the
// OTP gate so no code is ever dispatched for an unauthenticated requester.
func (s *Service) Login(ctx context.Context, in LoginInput) (*entity.User, string, error) {
	u, err := s.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return nil, "", err
	}

	if err := s.otpGate(ctx, u.Email, in.OTP); err != nil {
		return nil, "", err
	}

	token, _, err := s.JWT.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	u.LastLogin = &now
	if err := s.Repo.Update(u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to update last_login")
	}

	return u, token, nil
}

// GetProfile looks up an account by email. Reads require only authentication;
// the caller does not have to own the profile.
func (s *Service) GetProfile(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// authorizeMutation enforces the ownership rule for profile mutations:
// a caller may only change or delete their own record.
func authorizeMutation(requesterEmail, targetEmail string) error {
	if NormalizeEmail(requesterEmail) != NormalizeEmail(targetEmail) {
		return ErrForbidden
	}
	return nil
}

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

// UpdateProfile changes the display names of the target account. Nil fields
// are left untouched, which is how PATCH differs from PUT at the handler.
func (s *Service) UpdateProfile(ctx context.Context, requesterEmail, targetEmail string, in UpdateProfileInput) (*entity.User, error) {
	if err := authorizeMutation(requesterEmail, targetEmail); err != nil {
		return nil, err
	}

	u, err := s.GetProfile(ctx, targetEmail)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		if err := validation.Name("first_name", *in.FirstName); err != nil {
			return nil, err
		}
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		if err := validation.Name("last_name", *in.LastName); err != nil {
			return nil, err
		}
		u.LastName = *in.LastName
	}

	if err := s.Repo.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteProfile removes the target account. Same ownership rule as updates.
func (s *Service) DeleteProfile(ctx context.Context, requesterEmail, targetEmail string) error {
	if err := authorizeMutation(requesterEmail, targetEmail); err != nil {
		return err
	}

	u, err := s.GetProfile(ctx, targetEmail)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(u.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user deleted")
	}
	return nil
}
