package service

import (
	"context"
	"errors"
	"fmt"

	"mediafeed/backend/common"
	"mediafeed/backend/model"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidUserInput   = errors.New("invalid user input")
	ErrBadCredentials     = errors.New("bad credentials")
	ErrBadResetToken      = errors.New("bad password reset token")
	ErrBadVerifyToken     = errors.New("bad verification token")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrEmailAlreadyExists = errors.New("email already in use")
)

// UserHooks are called after the matching user lifecycle event succeeded.
type UserHooks interface {
	OnAfterRegister(ctx context.Context, user *model.User)
	OnAfterForgotPassword(ctx context.Context, user *model.User, token string)
	OnAfterRequestVerify(ctx context.Context, user *model.User, token string)
}

// LoggingHooks logs lifecycle events. There is no mail transport, so reset and
// verification tokens are only delivered through the log.
type LoggingHooks struct{}

func (LoggingHooks) OnAfterRegister(_ context.Context, user *model.User) {
	common.SysLog("user registered", "user_id", user.ID)
}

func (LoggingHooks) OnAfterForgotPassword(_ context.Context, user *model.User, token string) {
	common.SysLog("user forgot password", "user_id", user.ID, "reset_token", token)
}

func (LoggingHooks) OnAfterRequestVerify(_ context.Context, user *model.User, token string) {
	common.SysLog("verification requested", "user_id", user.ID, "verify_token", token)
}

type UserCreate struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,bcryptlen"`
}

// UserUpdate is a partial update; nil fields are left untouched. The
// privileged flags are only applied for unsafe (superuser) updates.
type UserUpdate struct {
	Email       *string `json:"email" validate:"omitempty,email,max=254"`
	Password    *string `json:"password" validate:"omitempty,min=6,bcryptlen"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
	IsVerified  *bool   `json:"is_verified"`
}

// UserManager implements registration, login and the account recovery flows.
type UserManager struct {
	auth  *AuthService
	hooks UserHooks
}

func NewUserManager(auth *AuthService, hooks UserHooks) *UserManager {
	if hooks == nil {
		hooks = LoggingHooks{}
	}
	return &UserManager{auth: auth, hooks: hooks}
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if verr.Field() == "Password" {
				return fmt.Errorf("%w: %s", ErrInvalidPassword, verr.Tag())
			}
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidUserInput, err)
}

func validatePassword(password string) error {
	if err := common.Validate.Var(password, "required,min=6,bcryptlen"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPassword, err)
	}
	return nil
}

// Register creates an active, unverified, non superuser account.
func (m *UserManager) Register(ctx context.Context, create UserCreate) (*model.User, error) {
	if err := common.Validate.Struct(&create); err != nil {
		return nil, validationError(err)
	}
	if model.IsEmailAlreadyTaken(create.Email) {
		return nil, ErrUserAlreadyExists
	}
	user := &model.User{
		Email:    create.Email,
		Password: create.Password,
		IsActive: true,
	}
	if err := insertUser(user); err != nil {
		return nil, err
	}
	m.hooks.OnAfterRegister(ctx, user)
	return user, nil
}

// insertUser saves a new user. A concurrent registration that won the unique
// email constraint is reported as ErrUserAlreadyExists.
func insertUser(user *model.User) error {
	if err := user.Insert(); err != nil {
		if model.IsEmailAlreadyTaken(user.Email) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Authenticate checks email and password. Unknown, wrong and inactive
// accounts all fail with ErrBadCredentials.
func (m *UserManager) Authenticate(_ context.Context, email, password string) (*model.User, error) {
	user, err := model.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// hash anyway so unknown emails cost the same as wrong passwords
			_, _ = common.Password2Hash(password)
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !common.ValidatePasswordAndHash(password, user.Password) {
		return nil, ErrBadCredentials
	}
	if !user.IsActive {
		return nil, ErrBadCredentials
	}
	return user, nil
}

// Login authenticates and issues an access token.
func (m *UserManager) Login(ctx context.Context, email, password string) (string, error) {
	user, err := m.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return m.auth.IssueAccessToken(user)
}

// ForgotPassword issues a reset token for an active account. Unknown or
// inactive emails succeed silently.
func (m *UserManager) ForgotPassword(ctx context.Context, email string) error {
	user, err := model.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}
	token, err := m.auth.IssueResetToken(user)
	if err != nil {
		return err
	}
	m.hooks.OnAfterForgotPassword(ctx, user, token)
	return nil
}

func (m *UserManager) ResetPassword(_ context.Context, token, password string) (*model.User, error) {
	id, fingerprint, err := m.auth.ParseResetToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResetToken, err)
	}
	user, err := model.GetUserById(id, "en")
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, ErrBadResetToken
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || fingerprint != passwordFingerprint(user.Password) {
		return nil, ErrBadResetToken
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	user.Password = password
	if err := user.Update(true); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	return user, nil
}

// RequestVerify issues a verification token for an active, unverified account.
func (m *UserManager) RequestVerify(ctx context.Context, email string) error {
	user, err := model.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive || user.IsVerified {
		return nil
	}
	token, err := m.auth.IssueVerifyToken(user)
	if err != nil {
		return err
	}
	m.hooks.OnAfterRequestVerify(ctx, user, token)
	return nil
}

func (m *UserManager) Verify(_ context.Context, token string) (*model.User, error) {
	id, email, err := m.auth.ParseVerifyToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadVerifyToken, err)
	}
	user, err := model.GetUserById(id, "en")
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, ErrBadVerifyToken
	}
	if err != nil {
		return nil, err
	}
	if user.Email != model.NormalizeEmail(email) {
		return nil, ErrBadVerifyToken
	}
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}
	user.IsVerified = true
	if err := user.Update(false); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Update applies patch to user. With safe set, is_active, is_superuser and
// is_verified are ignored. Changing the email clears is_verified.
func (m *UserManager) Update(_ context.Context, user *model.User, patch UserUpdate, safe bool) (*model.User, error) {
	if err := common.Validate.Struct(&patch); err != nil {
		return nil, validationError(err)
	}

	if patch.Email != nil {
		email := model.NormalizeEmail(*patch.Email)
		if email != user.Email {
			if model.IsEmailAlreadyTaken(email) {
				return nil, ErrEmailAlreadyExists
			}
			user.Email = email
			user.IsVerified = false
		}
	}
	if !safe {
		if patch.IsActive != nil {
			user.IsActive = *patch.IsActive
		}
		if patch.IsSuperuser != nil {
			user.IsSuperuser = *patch.IsSuperuser
		}
		if patch.IsVerified != nil {
			user.IsVerified = *patch.IsVerified
		}
	}
	updatePassword := patch.Password != nil
	if updatePassword {
		user.Password = *patch.Password
	}
	if err := user.Update(updatePassword); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (m *UserManager) Delete(_ context.Context, user *model.User) error {
	return user.Delete()
}
