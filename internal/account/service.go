package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrNotApproved        = errors.New("account is awaiting approval")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrAdminProtected     = errors.New("only an admin can delete another admin")
	ErrInvalidRole        = errors.New("invalid role")
)

// Mailer delivers account lifecycle notifications. Failures are logged, never
// surfaced to the caller.
type Mailer interface {
	SendWelcome(ctx context.Context, email, username string) error
	SendApproval(ctx context.Context, email, username string) error
}

// LogMailer is the default Mailer: it only logs what would be sent.
type LogMailer struct{}

func (LogMailer) SendWelcome(_ context.Context, email, username string) error {
	log.Info().Str("email", email).Str("username", username).Msg("welcome mail queued")
	return nil
}

func (LogMailer) SendApproval(_ context.Context, email, username string) error {
	log.Info().Str("email", email).Str("username", username).Msg("approval mail queued")
	return nil
}

type Service interface {
	Signup(ctx context.Context, user *User, password string) (*User, error)
	Create(ctx context.Context, user *User, password string) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]User, error)
	ListApprovedDeliverers(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User, newPassword string) error
	Approve(ctx context.Context, id uuid.UUID) (*User, error)
	Delete(ctx context.Context, actor *User, id uuid.UUID) error
}

type service struct {
	repo   Repository
	mailer Mailer
}

func NewService(repo Repository, mailer Mailer) Service {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &service{repo: repo, mailer: mailer}
}

// Signup registers a new account. Only clients are auto-approved; every other
// role waits for staff approval.
func (s *service) Signup(ctx context.Context, user *User, password string) (*User, error) {
	if !user.Role.Valid() {
		return nil, ErrInvalidRole
	}
	user.Approved = user.Role == RoleClient

	return s.create(ctx, user, password)
}

// Create registers an account on behalf of staff. The account is pre-approved.
func (s *service) Create(ctx context.Context, user *User, password string) (*User, error) {
	if !user.Role.Valid() {
		return nil, ErrInvalidRole
	}
	user.Approved = true

	return s.create(ctx, user, password)
}

func (s *service) create(ctx context.Context, user *User, password string) (*User, error) {
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameExists) || errors.Is(err, ErrEmailExists) {
			return nil, err
		}
		log.Error().Err(err).Str("username", user.Username).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	if err := s.mailer.SendWelcome(ctx, user.Email, user.Username); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("service: failed to send welcome mail")
	}

	log.Info().Stringer("user_id", user.ID).Str("role", user.Role.String()).Bool("approved", user.Approved).Msg("service: user created")
	return user, nil
}

// Authenticate checks the credentials and the approval flag. Unapproved
// accounts cannot log in.
func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Str("username", username).Msg("service: failed to fetch user for authentication")
		return nil, fmt.Errorf("service: failed to fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Approved {
		return nil, ErrNotApproved
	}

	return user, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to fetch user by id")
		return nil, fmt.Errorf("service: failed to fetch user by id: %w", err)
	}
	return user, nil
}

func (s *service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list users")
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, nil
}

func (s *service) ListApprovedDeliverers(ctx context.Context) ([]User, error) {
	deliverers, err := s.repo.ListByRole(ctx, RoleDeliverer, true)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list deliverers")
		return nil, fmt.Errorf("service: failed to list deliverers: %w", err)
	}
	return deliverers, nil
}

func (s *service) Update(ctx context.Context, user *User, newPassword string) error {
	if newPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Msg("service: failed to hash password")
			return fmt.Errorf("service: failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUsernameExists) || errors.Is(err, ErrEmailExists) {
			return err
		}
		log.Error().Err(err).Stringer("user_id", user.ID).Msg("service: failed to update user")
		return fmt.Errorf("service: failed to update user: %w", err)
	}
	return nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.Approve(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to approve user")
		return nil, fmt.Errorf("service: failed to approve user: %w", err)
	}

	if err := s.mailer.SendApproval(ctx, user.Email, user.Username); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("service: failed to send approval mail")
	}

	log.Info().Stringer("user_id", id).Msg("service: user approved")
	return user, nil
}

// Delete removes an account. It doubles as registration rejection for
// unapproved accounts. Actors cannot delete themselves, and only admins may
// delete other admins.
func (s *service) Delete(ctx context.Context, actor *User, id uuid.UUID) error {
	if actor.ID == id {
		return ErrCannotDeleteSelf
	}

	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to fetch user for deletion")
		return fmt.Errorf("service: failed to fetch user for deletion: %w", err)
	}

	if target.Role == RoleAdmin && actor.Role != RoleAdmin {
		return ErrAdminProtected
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to delete user")
		return fmt.Errorf("service: failed to delete user: %w", err)
	}

	log.Info().Stringer("user_id", id).Stringer("actor_id", actor.ID).Msg("service: user deleted")
	return nil
}
