package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"velum-go/internal/models"
	"velum-go/internal/repository"
	"velum-go/internal/utils"

	"go.uber.org/zap"
)

// DefaultProtectedUsername is the built-in administrator account name.
const DefaultProtectedUsername = "admin"

// CreateUserInput is used by registration and by admins creating accounts.
type CreateUserInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// UpdateUserInput carries optional changes; nil fields are left untouched.
type UpdateUserInput struct {
	Email    *string `json:"email"`
	FullName *string `json:"fullName"`
	Avatar   *string `json:"avatar"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

type UserService struct {
	repo      *repository.UserRepository
	logs      *LogService
	log       *zap.Logger
	protected string
	now       func() time.Time
}

// NewUserService builds the service. protectedUsername names the account that
// can never be deleted; empty means DefaultProtectedUsername.
func NewUserService(repo *repository.UserRepository, logs *LogService, protectedUsername string, log *zap.Logger) *UserService {
	if protectedUsername == "" {
		protectedUsername = DefaultProtectedUsername
	}
	return &UserService{repo: repo, logs: logs, log: log, protected: protectedUsername, now: time.Now}
}

// Authenticate checks the credentials and records the login time.
func (s *UserService) Authenticate(ctx context.Context, username, password string, ip string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if models.IsNotFoundError(err) {
			s.log.Debug("Login for unknown user", zap.String("username", username))
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		s.logs.Warning(ctx, &Actor{UserID: user.ID, Username: user.Username, IP: ip}, "LoginFailed", "Auth", "Invalid password for "+user.Username)
		return nil, models.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("Failed to update last login", zap.Int("userID", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}
	s.logs.Info(ctx, &Actor{UserID: user.ID, Username: user.Username, IP: ip}, "Login", "Auth", "User logged in: "+user.Username)
	return user, nil
}

// Register creates a regular user account.
func (s *UserService) Register(ctx context.Context, in CreateUserInput, ip string) (*models.User, error) {
	in.Role = models.RoleUser
	user, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logs.Info(ctx, &Actor{UserID: user.ID, Username: user.Username, IP: ip}, "Register", "Users", "User registered: "+user.Username)
	return user, nil
}

// Create lets an admin create an account with any role.
func (s *UserService) Create(ctx context.Context, actor *Actor, in CreateUserInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	user, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logs.Info(ctx, actor, "CreateUser", "Users", "User created: "+user.Username)
	return user, nil
}

func (s *UserService) create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if !utils.IsValidUsername(in.Username) {
		return nil, fmt.Errorf("%w: username must be 3-64 letters, digits, '_', '.' or '-'", models.ErrInvalidInput)
	}
	if !models.ValidRole(in.Role) {
		return nil, models.ErrInvalidUserRole
	}
	if in.Email != "" && !utils.IsValidEmail(in.Email) {
		return nil, models.ErrInvalidEmail
	}
	if problems := utils.PasswordProblems(in.Password); len(problems) > 0 {
		return nil, fmt.Errorf("%w: needs %s", models.ErrWeakPassword, strings.Join(problems, ", "))
	}

	exists, err := s.repo.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrUsernameTaken
	}

	user := &models.User{
		Username: in.Username,
		Email:    strings.TrimSpace(in.Email),
		FullName: strings.TrimSpace(in.FullName),
		Role:     in.Role,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns users, optionally filtered by role (case-insensitive).
func (s *UserService) List(ctx context.Context, role string) ([]models.User, error) {
	role = strings.TrimSpace(role)
	switch strings.ToLower(role) {
	case "":
	case strings.ToLower(models.RoleAdmin):
		role = models.RoleAdmin
	case strings.ToLower(models.RoleUser):
		role = models.RoleUser
	default:
		return nil, models.ErrInvalidUserRole
	}
	return s.repo.List(ctx, role)
}

// Update applies an admin edit, including role and password changes.
func (s *UserService) Update(ctx context.Context, actor *Actor, id int, in UpdateUserInput) (*models.User, error) {
	user, err := s.apply(ctx, id, in, true)
	if err != nil {
		return nil, err
	}
	s.logs.Info(ctx, actor, "UpdateUser", "Users", "User updated: "+user.Username)
	return user, nil
}

// UpdateProfile applies a self-service edit. The role cannot be changed.
func (s *UserService) UpdateProfile(ctx context.Context, actor *Actor, in UpdateUserInput) (*models.User, error) {
	in.Role = nil
	user, err := s.apply(ctx, actor.UserID, in, false)
	if err != nil {
		return nil, err
	}
	s.logs.Info(ctx, actor, "UpdateProfile", "Users", "User updated profile: "+user.Username)
	return user, nil
}

func (s *UserService) apply(ctx context.Context, id int, in UpdateUserInput, allowRole bool) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" && !utils.IsValidEmail(email) {
			return nil, models.ErrInvalidEmail
		}
		user.Email = email
	}
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if allowRole && in.Role != nil && *in.Role != "" {
		if !models.ValidRole(*in.Role) {
			return nil, models.ErrInvalidUserRole
		}
		user.Role = *in.Role
	}
	if in.Password != nil && *in.Password != "" {
		if problems := utils.PasswordProblems(*in.Password); len(problems) > 0 {
			return nil, fmt.Errorf("%w: needs %s", models.ErrWeakPassword, strings.Join(problems, ", "))
		}
		if err := user.SetPassword(*in.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes an account. The built-in admin is protected.
func (s *UserService) Delete(ctx context.Context, actor *Actor, id int) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Username == s.protected {
		return models.ErrProtectedUser
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logs.Info(ctx, actor, "DeleteUser", "Users", "User deleted: "+user.Username)
	return nil
}
