package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInitDataInvalid = errors.New("invalid telegram init data")
	ErrInitDataExpired = errors.New("telegram init data expired")
)

// TelegramUser - the "user" field of WebApp init data
type TelegramUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// PlayerID maps a Telegram user to a game player id
func (u TelegramUser) PlayerID() string {
	return "tg-" + strconv.FormatInt(u.ID, 10)
}

// ValidateTelegramInitData verifies the init_data HMAC and that auth_date is
// within maxAge of now (5 minutes of clock skew allowed).
func ValidateTelegramInitData(initData, botToken string, maxAge time.Duration, now time.Time) (TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return TelegramUser{}, ErrInitDataInvalid
	}

	hash := values.Get("hash")
	if hash == "" {
		return TelegramUser{}, ErrInitDataInvalid
	}
	values.Del("hash")

	var dataCheck []string
	for k, v := range values {
		dataCheck = append(dataCheck, k+"="+strings.Join(v, ""))
	}
	sort.Strings(dataCheck)

	secret := sha256.Sum256([]byte(botToken))
	h := hmac.New(sha256.New, secret[:])
	h.Write([]byte(strings.Join(dataCheck, "\n")))

	provided, err := hex.DecodeString(hash)
	if err != nil || !hmac.Equal(h.Sum(nil), provided) {
		return TelegramUser{}, ErrInitDataInvalid
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return TelegramUser{}, ErrInitDataInvalid
	}
	age := now.Unix() - authDate
	if age > int64(maxAge.Seconds()) || age < -300 {
		return TelegramUser{}, ErrInitDataExpired
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return TelegramUser{}, ErrInitDataInvalid
	}
	return user, nil
}
