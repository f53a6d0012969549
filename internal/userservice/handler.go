package userservice

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/sushihentaime/blogverse/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid authentication credentials")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, tokens *TokenManager, logger *slog.Logger) *UserService {
	return &UserService{
		m:      newUserModel(db),
		mb:     mb,
		tokens: tokens,
		logger: logger,
	}
}

// CreateUser creates an account, publishes a user.created event and returns the user with
// a fresh access token. An empty role means RoleUser.
func (s *UserService) CreateUser(ctx context.Context, name, email, password string, role Role) (*User, *AuthToken, error) {
	if role == "" {
		role = RoleUser
	}

	v := common.NewValidator()
	validateName(v, name)
	validateEmail(v, email)
	validatePassword(v, password)
	validateRole(v, role, RoleUser, RoleEditor, RoleAdmin)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	u := User{
		Name:  name,
		Email: email,
		Role:  role,
	}

	err := u.Password.set(password)
	if err != nil {
		return nil, nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, nil, err
	}

	token, err := s.tokens.Issue(&u)
	if err != nil {
		return nil, nil, err
	}

	s.notify(ctx, common.UserCreatedKey, common.Notification{
		Email: u.Email,
		Data:  map[string]string{"Name": u.Name},
	})

	return &u, token, nil
}

// LoginUser checks the credentials and returns the user with a fresh access token.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*User, *AuthToken, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, nil, ErrAuthenticationFailure
		default:
			return nil, nil, err
		}
	}

	ok, err := user.Password.matches(password)
	if err != nil {
		return nil, nil, err
	}

	if !ok {
		return nil, nil, ErrAuthenticationFailure
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

// Authenticate verifies an access token and loads its user so role changes apply immediately.
func (s *UserService) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.m.getUserByID(ctx, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (*User, error) {
	v := common.NewValidator()
	common.ValidateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getUserByID(ctx, id)
}

// GetProfile returns the user with followers, following, bookmarks and blog aggregates.
func (s *UserService) GetProfile(ctx context.Context, id int) (*Profile, error) {
	v := common.NewValidator()
	common.ValidateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getProfile(ctx, id)
}

// UpdateProfile applies the non-nil fields of req to the user.
func (s *UserService) UpdateProfile(ctx context.Context, id int, req *UpdateProfileRequest) (*User, error) {
	v := common.NewValidator()
	validateProfile(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u, err := s.m.getUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
	}
	if req.Website != nil {
		u.Website = *req.Website
	}
	if req.Location != nil {
		u.Location = *req.Location
	}

	if err := s.m.updateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// RequestPasswordReset publishes a reset token for the account. Unknown emails are ignored
// so callers cannot probe for accounts.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	v := common.NewValidator()
	validateEmail(v, email)
	if !v.Valid() {
		return v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			return nil
		default:
			return err
		}
	}

	token, err := s.m.createToken(ctx, user.ID, PasswordResetTokenTime, TokenScopePasswordReset)
	if err != nil {
		return err
	}

	s.notify(ctx, common.PasswordResetKey, common.Notification{
		Email: user.Email,
		Data:  map[string]string{"Name": user.Name, "Token": token.Plain},
	})

	return nil
}

// ResetPassword sets a new password using a reset token and revokes the user's reset tokens.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	v := common.NewValidator()
	validateResetToken(v, token)
	validatePassword(v, password)
	if !v.Valid() {
		return v.ValidationError()
	}

	user, err := s.m.getUserForToken(ctx, TokenScopePasswordReset, hashToken(token))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			v.AddError("token", "invalid or expired password reset token")
			return v.ValidationError()
		default:
			return err
		}
	}

	if err := user.Password.set(password); err != nil {
		return err
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = s.m.updateUserPassword(tx, ctx, user.Password, user.ID, user.Version)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = s.m.deleteTokens(tx, ctx, user.ID, TokenScopePasswordReset)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// ListUsers returns users newest first. Default limit is 20.
func (s *UserService) ListUsers(ctx context.Context, limit, offset *int) ([]User, error) {
	l, o := 20, 0
	if limit != nil && *limit > 0 && *limit <= 100 {
		l = *limit
	}
	if offset != nil && *offset > 0 {
		o = *offset
	}

	return s.m.listUsers(ctx, l, o)
}

// ChangeRole promotes a user to editor or admin.
func (s *UserService) ChangeRole(ctx context.Context, id int, role Role) (*User, error) {
	v := common.NewValidator()
	common.ValidateID(v, id, "id")
	validateRole(v, role, RoleEditor, RoleAdmin)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.updateUserRole(ctx, id, role)
}

// DeleteUser removes a user together with everything the user owns.
func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	v := common.NewValidator()
	common.ValidateID(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := s.m.deleteUser(tx, ctx, id); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// notify publishes a notification and logs delivery problems instead of returning them.
func (s *UserService) notify(ctx context.Context, key common.BindingKey, n common.Notification) {
	err := common.PublishNotification(ctx, s.mb, key, n)
	if err != nil && s.logger != nil {
		s.logger.Error("could not publish notification", slog.String("key", string(key)), slog.String("error", err.Error()))
	}
}
