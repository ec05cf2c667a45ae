package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"docstore-api/internal/logging"
	"docstore-api/internal/user"
)

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidOTP         = errors.New("otp not found or expired")
)

// otpValidity is the window in which a reset ticket can be consumed.
const otpValidity = 5 * time.Minute

// CodeSender delivers a one-time code out of band. Delivery failure is
// never fatal to the request that issued the code.
type CodeSender interface {
	DeliverCode(ctx context.Context, toEmail, code string) error
}

// Service handles account and password-reset business logic.
type Service struct {
	userRepo *user.Repository
	tickets  TicketStore
	sender   CodeSender
	logger   *logging.Logger
}

func NewService(userRepo *user.Repository, tickets TicketStore, sender CodeSender, logger *logging.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		tickets:  tickets,
		sender:   sender,
		logger:   logger,
	}
}

// RegisterInput carries the registration form. Every field is required.
type RegisterInput struct {
	Name            string
	Phone           string
	Age             json.Number
	Gender          string
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// Register creates a new account after presence, confirmation and
// uniqueness checks. The uniqueness checks are read-then-write: two
// concurrent registrations with the same username can both pass (documented
// contract, see DESIGN.md).
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if in.Name == "" || in.Phone == "" || in.Age.String() == "" || in.Gender == "" ||
		in.Email == "" || in.Username == "" || in.Password == "" || in.ConfirmPassword == "" {
		return ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	taken, err := s.userRepo.UsernameExists(ctx, in.Username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	registered, err := s.userRepo.EmailExists(ctx, in.Email)
	if err != nil {
		return err
	}
	if registered {
		return ErrEmailRegistered
	}

	// The password is stored as provided: login matches the stored value by
	// equality (see DESIGN.md).
	_, err = s.userRepo.Create(ctx, &user.Account{
		Name:     in.Name,
		Phone:    in.Phone,
		Age:      in.Age,
		Gender:   in.Gender,
		Email:    in.Email,
		Username: in.Username,
		Password: in.Password,
	})
	return err
}

// Login returns the account matching the credentials exactly.
func (s *Service) Login(ctx context.Context, username, password string) (*user.Account, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	account, err := s.userRepo.FindByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return account, nil
}

// ForgotPassword issues a reset ticket for the (username, email) pair and
// returns the generated code so the handler can decide whether to echo it
// in development.
func (s *Service) ForgotPassword(ctx context.Context, email, username string) (string, error) {
	if email == "" || username == "" {
		return "", ErrMissingFields
	}

	if _, err := s.userRepo.FindByUsernameAndEmail(ctx, username, email); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	otp, err := generateOTP()
	if err != nil {
		return "", err
	}

	ticket := Ticket{OTP: otp, Email: email, CreatedAt: time.Now()}
	if err := s.tickets.Save(ctx, username, ticket); err != nil {
		return "", fmt.Errorf("failed to store otp ticket: %w", err)
	}

	// Deliver out of band without blocking the response. A delivery failure
	// is logged, not surfaced: the ticket is already issued.
	go func() {
		deliveryCtx := context.Background()
		if err := s.sender.DeliverCode(deliveryCtx, email, otp); err != nil {
			s.logger.Warn("failed to deliver otp code", "email", email, "error", err)
		}
	}()

	return otp, nil
}

// ResetInput carries the reset form. Every field is required.
type ResetInput struct {
	Email           string
	Username        string
	OTP             string
	NewPassword     string
	ConfirmPassword string
}

// ResetPassword consumes a valid ticket and overwrites the account
// password. Wrong email, wrong code and expired ticket all collapse into
// the same ErrInvalidOTP: callers get no distinct failure signal.
func (s *Service) ResetPassword(ctx context.Context, in ResetInput) error {
	if in.Email == "" || in.Username == "" || in.OTP == "" ||
		in.NewPassword == "" || in.ConfirmPassword == "" {
		return ErrMissingFields
	}
	if in.NewPassword != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	ticket, err := s.tickets.Get(ctx, in.Username)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return ErrInvalidOTP
		}
		return err
	}

	if ticket.Email != in.Email || ticket.OTP != in.OTP ||
		time.Since(ticket.CreatedAt) > otpValidity {
		return ErrInvalidOTP
	}

	account, err := s.userRepo.FindByUsernameAndEmail(ctx, in.Username, in.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, account.ID, in.NewPassword); err != nil {
		return err
	}

	// Single-use consumption. If deletion fails the ticket stays valid
	// until it expires: accepted inconsistency window, no compensation.
	if err := s.tickets.Delete(ctx, in.Username); err != nil {
		s.logger.Warn("failed to delete consumed otp ticket", "username", in.Username, "error", err)
	}

	return nil
}
