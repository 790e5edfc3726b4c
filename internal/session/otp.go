package session

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "otp:user:"

// otpConsumeScript deletes the stored code only when it matches the
// submitted one, so two concurrent confirms cannot both succeed.
var otpConsumeScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// OTPStore issues and verifies one-time password-reset codes. Codes live
// in Redis with a TTL and are consumed on successful verification.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore constructs an OTP store.
func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPStore{client: client, ttl: ttl}
}

// Issue generates a 6-digit code for the user, replacing any pending one.
func (s *OTPStore) Issue(ctx context.Context, userID uint) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s%d", otpKeyPrefix, userID)
	if err := s.client.Set(ctx, key, code, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}

	return code, nil
}

// Verify checks the pending code for the user and consumes it on match.
// A mismatch leaves the pending code intact.
func (s *OTPStore) Verify(ctx context.Context, userID uint, code string) (bool, error) {
	key := fmt.Sprintf("%s%d", otpKeyPrefix, userID)

	deleted, err := otpConsumeScript.Run(ctx, s.client, []string{key}, code).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}

	return deleted == 1, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
