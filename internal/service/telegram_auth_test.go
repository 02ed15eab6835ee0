package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

// buildInitData signs fields the way Telegram does
func buildInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()
	var parts []string
	for k, v := range fields {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)

	secret := sha256.Sum256([]byte(botToken))
	h := hmac.New(sha256.New, secret[:])
	h.Write([]byte(strings.Join(parts, "\n")))

	vals := url.Values{}
	for k, v := range fields {
		vals.Add(k, v)
	}
	vals.Add("hash", hex.EncodeToString(h.Sum(nil)))
	return vals.Encode()
}

func TestValidateTelegramInitData_Valid(t *testing.T) {
	now := time.Now()
	initData := buildInitData(t, "test-bot-token", map[string]string{
		"auth_date": strconv.FormatInt(now.Unix(), 10),
		"user":      `{"id":42,"username":"u","first_name":"F"}`,
	})

	user, err := ValidateTelegramInitData(initData, "test-bot-token", time.Hour, now)
	if err != nil {
		t.Fatalf("expected valid init data: %v", err)
	}
	if user.ID != 42 || user.Username != "u" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.PlayerID() != "tg-42" {
		t.Fatalf("player id = %q", user.PlayerID())
	}
}

func TestValidateTelegramInitData_Tampered(t *testing.T) {
	now := time.Now()
	initData := buildInitData(t, "test-bot-token", map[string]string{
		"auth_date": strconv.FormatInt(now.Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	})

	if _, err := ValidateTelegramInitData(initData+"&x=1", "test-bot-token", time.Hour, now); !errors.Is(err, ErrInitDataInvalid) {
		t.Fatalf("err = %v; want ErrInitDataInvalid", err)
	}
	if _, err := ValidateTelegramInitData(initData, "other-token", time.Hour, now); !errors.Is(err, ErrInitDataInvalid) {
		t.Fatalf("wrong token accepted: %v", err)
	}
}

func TestValidateTelegramInitData_Expired(t *testing.T) {
	now := time.Now()
	initData := buildInitData(t, "test-bot-token", map[string]string{
		"auth_date": strconv.FormatInt(now.Add(-2*time.Hour).Unix(), 10),
		"user":      `{"id":1}`,
	})

	if _, err := ValidateTelegramInitData(initData, "test-bot-token", time.Hour, now); !errors.Is(err, ErrInitDataExpired) {
		t.Fatalf("err = %v; want ErrInitDataExpired", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret", time.Hour)

	token, err := GenerateJWT("player-1")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	id, err := ParseJWT(token)
	if err != nil || id != "player-1" {
		t.Fatalf("ParseJWT = %q, %v", id, err)
	}
	if _, err := ParseJWT(token + "x"); err == nil {
		t.Fatalf("tampered token accepted")
	}
}
