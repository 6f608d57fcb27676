package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type JwtCustomClaim struct {
	ID     int    `json:"id"`
	RoleId int    `json:"role_id"`
	Name   string `json:"name"`
	jwt.StandardClaims
}

func getJwtSecret() []byte {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return []byte("Books-Quotation-Secret")
	}
	return []byte(secret)
}

func getTokenLifespan() (time.Duration, error) {
	raw := os.Getenv("TOKEN_HOUR_LIFESPAN")
	if raw == "" {
		return 24 * time.Hour, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return time.Duration(hours) * time.Hour, nil
}

func JwtGenerate(userID int, roleId int, name string) (string, error) {
	lifespan, err := getTokenLifespan()
	if err != nil {
		return "", err
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:     userID,
		RoleId: roleId,
		Name:   name,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(lifespan).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})

	return t.SignedString(getJwtSecret())
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return getJwtSecret(), nil
	})
}
