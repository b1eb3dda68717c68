package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"
)

const testBotToken = "123456:TEST-TOKEN"

func signInitData(values url.Values, botToken string) string {
	var pairs []string
	for key, vals := range values {
		for _, val := range vals {
			pairs = append(pairs, key+"="+val)
		}
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func TestVerifyInitData(t *testing.T) {
	values := url.Values{}
	values.Set("user", `{"id":7364823,"username":"shopper","first_name":"Sam"}`)
	values.Set("auth_date", "1724500000")
	values.Set("query_id", "AAF3x")
	initData := signInitData(values, testBotToken)

	user, err := VerifyInitData(initData, testBotToken)
	if err != nil {
		t.Fatalf("Expected valid init data, got %v", err)
	}
	if user.ID != 7364823 {
		t.Errorf("Expected user id 7364823, got %d", user.ID)
	}
	if user.Username != "shopper" {
		t.Errorf("Expected username shopper, got %s", user.Username)
	}
}

func TestVerifyInitDataWrongBotToken(t *testing.T) {
	values := url.Values{}
	values.Set("user", `{"id":1,"first_name":"Sam"}`)
	values.Set("auth_date", "1724500000")
	initData := signInitData(values, "999999:OTHER-TOKEN")

	if _, err := VerifyInitData(initData, testBotToken); err != ErrInvalidInitData {
		t.Errorf("Expected ErrInvalidInitData, got %v", err)
	}
}

func TestVerifyInitDataTampered(t *testing.T) {
	values := url.Values{}
	values.Set("user", `{"id":1,"first_name":"Sam"}`)
	values.Set("auth_date", "1724500000")
	initData := signInitData(values, testBotToken)

	tampered := strings.Replace(initData, "1724500000", "1724599999", 1)
	if _, err := VerifyInitData(tampered, testBotToken); err != ErrInvalidInitData {
		t.Errorf("Expected ErrInvalidInitData for tampered payload, got %v", err)
	}
}

func TestVerifyInitDataMissingHash(t *testing.T) {
	if _, err := VerifyInitData("user=%7B%22id%22%3A1%7D&auth_date=1", testBotToken); err != ErrInvalidInitData {
		t.Errorf("Expected ErrInvalidInitData without hash, got %v", err)
	}
}

func TestVerifyInitDataMissingUser(t *testing.T) {
	values := url.Values{}
	values.Set("auth_date", "1724500000")
	initData := signInitData(values, testBotToken)

	if _, err := VerifyInitData(initData, testBotToken); err != ErrInvalidInitData {
		t.Errorf("Expected ErrInvalidInitData without user, got %v", err)
	}
}

func TestVerifyInitDataZeroUserID(t *testing.T) {
	values := url.Values{}
	values.Set("user", `{"id":0,"first_name":"Nobody"}`)
	values.Set("auth_date", "1724500000")
	initData := signInitData(values, testBotToken)

	if _, err := VerifyInitData(initData, testBotToken); err != ErrInvalidInitData {
		t.Errorf("Expected ErrInvalidInitData for zero user id, got %v", err)
	}
}
