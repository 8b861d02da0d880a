package serializer

import (
	"time"

	onetimekeydomain "github.com/smallbiznis/kpi/internal/onetimekey/domain"
)

// OneTimeKeyRequest names the user a one-time key is issued for.
type OneTimeKeyRequest struct {
	Username string `json:"username" binding:"required"`
}

type OneTimeKey struct {
	User   string    `json:"user"`
	Key    string    `json:"key"`
	Expiry time.Time `json:"expiry"`
}

func NewOneTimeKey(username string, k *onetimekeydomain.OneTimeAuthenticationKey) OneTimeKey {
	return OneTimeKey{User: username, Key: k.Key, Expiry: k.Expiry}
}

type RedeemRequest struct {
	Key string `json:"key" binding:"required"`
}

// RedeemedToken is the bearer token handed out for a redeemed key.
type RedeemedToken struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}
