package service

import (
	"context"
	"errors"

	"github.com/sessiontodo/todo/database"
	"github.com/sessiontodo/todo/database/model"
	"github.com/sessiontodo/todo/util/crypto"
	"github.com/sessiontodo/todo/web/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService registers accounts and checks login credentials.
type UserService struct {
	db   *gorm.DB
	cost int
}

func NewUserService(db *gorm.DB, bcryptCost int) *UserService {
	return &UserService{db: db, cost: bcryptCost}
}

// Register validates form, hashes the password and stores a new user.
// Username and email must both be unused.
func (s *UserService) Register(ctx context.Context, form *entity.RegisterForm) (*model.User, error) {
	if err := form.CheckValid(); err != nil {
		return nil, err
	}

	hash, err := crypto.HashPasswordAsBcrypt(form.Password, s.cost)
	if err != nil {
		return nil, entity.WrapError(entity.KindHash, "auth.hashFailed", err)
	}

	if err := s.checkAvailable(ctx, form.Username, form.Email); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, entity.WrapError(entity.KindInternal, "errors.internal", err)
	}
	user := &model.User{
		Id:       id.String(),
		Name:     form.Name,
		Username: form.Username,
		Email:    form.Email,
		Password: hash,
	}

	err = s.db.WithContext(ctx).Create(user).Error
	if database.IsDuplicateKey(err) {
		// lost a race with a concurrent registration
		if taken := s.checkAvailable(ctx, form.Username, form.Email); taken != nil {
			return nil, taken
		}
	}
	if err != nil {
		return nil, entity.WrapError(entity.KindStore, "errors.database", err)
	}
	return user, nil
}

func (s *UserService) checkAvailable(ctx context.Context, username, email string) error {
	taken, err := s.exists(ctx, "username = ?", username)
	if err != nil {
		return entity.WrapError(entity.KindStore, "errors.database", err)
	}
	if taken {
		return entity.NewError(entity.KindValidation, "auth.usernameTaken")
	}

	taken, err = s.exists(ctx, "email = ?", email)
	if err != nil {
		return entity.WrapError(entity.KindStore, "errors.database", err)
	}
	if taken {
		return entity.NewError(entity.KindValidation, "auth.emailTaken")
	}
	return nil
}

func (s *UserService) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where(query, args...).
		Count(&count).
		Error
	return count > 0, err
}

// CheckUser resolves the login id as an email or a username and verifies
// the password against the stored hash.
func (s *UserService) CheckUser(ctx context.Context, form *entity.LoginForm) (*model.User, error) {
	if err := form.CheckValid(); err != nil {
		return nil, err
	}

	column, notRegistered := "username", "auth.usernameNotRegistered"
	if entity.IsEmail(form.LoginId) {
		column, notRegistered = "email", "auth.emailNotRegistered"
	}

	user := &model.User{}
	err := s.db.WithContext(ctx).
		Model(model.User{}).
		Where(column+" = ?", form.LoginId).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, entity.NewError(entity.KindValidation, notRegistered)
	} else if err != nil {
		return nil, entity.WrapError(entity.KindStore, "errors.database", err)
	}

	if err := crypto.ComparePasswordHash(user.Password, form.Password); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return nil, entity.NewError(entity.KindValidation, "auth.wrongPassword")
		}
		return nil, entity.WrapError(entity.KindInternal, "auth.compareFailed", err)
	}
	return user, nil
}
