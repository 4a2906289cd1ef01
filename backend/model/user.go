package model

import (
	"errors"
	"fmt"
	"strings"

	"mediafeed/backend/common"
	mferrors "mediafeed/backend/common/errors"
	"mediafeed/backend/common/i18n"

	"github.com/burugo/thing"
)

var ErrUserNotFound = errors.New("user not found")

// User is an account that can obtain bearer tokens. Password holds the bcrypt
// hash once the user has been inserted.
type User struct {
	thing.BaseModel
	Email       string `db:"email,unique" json:"email"`
	Password    string `db:"password" json:"-"`
	IsActive    bool   `db:"is_active" json:"is_active"`
	IsSuperuser bool   `db:"is_superuser" json:"is_superuser"`
	IsVerified  bool   `db:"is_verified" json:"is_verified"`
}

func (user *User) TableName() string {
	return "users"
}

// UserRead is the public representation of a user.
type UserRead struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	IsVerified  bool   `json:"is_verified"`
}

func (user *User) Read() UserRead {
	return UserRead{
		ID:          user.ID,
		Email:       user.Email,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		IsVerified:  user.IsVerified,
	}
}

var UserDB *thing.Thing[*User]

// UserInit binds UserDB during InitDB.
func UserInit() error {
	var err error
	UserDB, err = thing.Use[*User]()
	if err != nil {
		return err
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func GetAllUsers(startIdx int, num int) ([]*User, error) {
	return UserDB.Order("id DESC").Fetch(startIdx, num)
}

func GetUserById(id int64, lang string) (*User, error) {
	if id == 0 {
		return nil, i18n.Wrap(ErrUserNotFound, mferrors.ErrEmptyID, lang)
	}
	if id < 0 {
		return nil, i18n.Wrap(ErrUserNotFound, mferrors.ErrUserNotFound, lang)
	}
	// ByID reports database failures as not found; the query path keeps them.
	users, err := UserDB.Where("id = ?", id).Fetch(0, 1)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	if len(users) == 0 {
		return nil, i18n.Wrap(ErrUserNotFound, mferrors.ErrUserNotFound, lang)
	}
	return users[0], nil
}

func GetUserByEmail(email string) (*User, error) {
	users, err := UserDB.Where("email = ?", NormalizeEmail(email)).Fetch(0, 1)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func DeleteUserById(id int64, lang string) error {
	user, err := GetUserById(id, lang)
	if err != nil {
		return err
	}
	return UserDB.Delete(user)
}

func IsEmailAlreadyTaken(email string) bool {
	users, err := UserDB.Where("email = ?", NormalizeEmail(email)).Fetch(0, 1)
	return err == nil && len(users) > 0
}

// Insert hashes the plain text password and saves a new user.
func (user *User) Insert() error {
	user.Email = NormalizeEmail(user.Email)
	if user.Password != "" {
		var err error
		user.Password, err = common.Password2Hash(user.Password)
		if err != nil {
			return err
		}
	}
	return UserDB.Save(user)
}

// Update saves user; with updatePassword the Password field is treated as plain text.
func (user *User) Update(updatePassword bool) error {
	user.Email = NormalizeEmail(user.Email)
	if updatePassword {
		var err error
		user.Password, err = common.Password2Hash(user.Password)
		if err != nil {
			return err
		}
	}
	return UserDB.Save(user)
}

func (user *User) Delete() error {
	if user.ID == 0 {
		return errors.New("id is empty")
	}
	return UserDB.Delete(user)
}
