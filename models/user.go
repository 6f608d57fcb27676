package models

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/books_quotation/config"
	"github.com/mmdatafocus/books_quotation/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;uniqueIndex" json:"username" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     *string   `gorm:"size:100;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	RoleId    int       `gorm:"index;not null" json:"role_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	RoleId   int    `json:"role_id" binding:"required"`
}

type LoginInfo struct {
	Token  string `json:"access_token"`
	Name   string `json:"name"`
	RoleId int    `json:"role_id"`
}

var ErrInvalidCredentials = errors.New("invalid username or password")

func CreateUser(ctx context.Context, db *gorm.DB, input *NewUser) (*User, error) {
	username := strings.TrimSpace(input.Username)
	if err := utils.ValidateUniqueWhere[User](ctx, db, 0, "duplicate username", "username = ?", username); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Role](ctx, db, input.RoleId); err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Username: username,
		Name:     input.Name,
		Password: string(hashed),
		IsActive: utils.NewTrue(),
		RoleId:   input.RoleId,
	}
	if input.Email != "" {
		user.Email = &input.Email
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.ConflictError("duplicate username")
		}
		return nil, err
	}
	return &user, nil
}

// Login checks the credentials and issues a bearer token.
func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {
	db := config.GetDB()

	user, found, err := utils.FetchModelWhere[User](ctx, db, "username = ?", username)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvalidCredentials
	}

	if err := utils.ComparePassword(user.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.DereferencePtr(user.IsActive) {
		return nil, errors.New("user is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, user.RoleId, user.Name)
	if err != nil {
		return nil, err
	}
	return &LoginInfo{Token: token, Name: user.Name, RoleId: user.RoleId}, nil
}

func sessionUserCacheKey(userId int) string {
	return "User:" + strconv.Itoa(userId)
}

// GetSessionUser loads the user behind a bearer token, cached in redis.
func GetSessionUser(ctx context.Context, db *gorm.DB, userId int) (*User, error) {
	var user User
	exists, err := config.GetRedisObject(sessionUserCacheKey(userId), &user)
	if err != nil {
		return nil, err
	}
	if exists {
		return &user, nil
	}

	found, err := utils.FetchModel[User](ctx, db, userId)
	if err != nil {
		return nil, err
	}
	if err := config.SetRedisObject(sessionUserCacheKey(userId), found, utils.GetCacheLifespan()); err != nil {
		return nil, err
	}
	return found, nil
}
