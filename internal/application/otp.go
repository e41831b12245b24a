package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/api-profiles/pkg/helpers"
	"github.com/oksasatya/api-profiles/pkg/mailer"
	"github.com/oksasatya/api-profiles/pkg/mailer/templates"
)

// OTPStore keeps the current one-time code per email address in Redis.
// At most one live code exists per email; issuing replaces any prior code.
type OTPStore struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewOTPStore(rdb *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{Redis: rdb, TTL: ttl}
}

// Issue generates a fresh code for the normalized email and stores it with the
// configured TTL, overwriting any existing entry. The code is returned for
// out-of-band delivery only and must never appear in an HTTP response.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return "", err
	}
	if err := s.Redis.Set(ctx, helpers.KeyLoginOTP(email), code, s.TTL).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify reports whether a live code exists for the email and matches the
// submitted one exactly (case-sensitive). A successful match consumes the
// entry so the code cannot be replayed; a failed match leaves it in place so
// the user can retry until the TTL runs out.
func (s *OTPStore) Verify(ctx context.Context, email, submitted string) (bool, error) {
	key := helpers.KeyLoginOTP(email)
	stored, err := s.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return false, nil
	}
	_ = s.Redis.Del(ctx, key).Err()
	return true, nil
}

// QueuePublisher is the one-way channel the dispatcher hands mail jobs to.
// *helpers.RabbitPublisher satisfies it in production.
type QueuePublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

var _ QueuePublisher = (*helpers.RabbitPublisher)(nil)

// OTPDispatcher issues a code and hands the delivery email to the queue.
// Delivery is fire-and-forget: the publish happens in the background and a
// failure never changes the outcome of the request that triggered it.
type OTPDispatcher struct {
	Store   *OTPStore
	Pub     QueuePublisher
	Logger  *logrus.Logger
	Enabled bool
}

func NewOTPDispatcher(store *OTPStore, pub QueuePublisher, logger *logrus.Logger, enabled bool) *OTPDispatcher {
	return &OTPDispatcher{Store: store, Pub: pub, Logger: logger, Enabled: enabled}
}

// Dispatch stores a new code for the email and enqueues the notification.
// Only the synchronous store step can fail; queue errors are logged and
// swallowed.
func (d *OTPDispatcher) Dispatch(ctx context.Context, email string) error {
	code, err := d.Store.Issue(ctx, email)
	if err != nil {
		return err
	}

	if !d.Enabled || d.Pub == nil {
		if d.Logger != nil {
			d.Logger.WithField("email", email).Debug("mail sending disabled; otp issued without delivery")
		}
		return nil
	}

	job := mailer.EmailJob{
		To:       email,
		Template: templates.LoginOTP,
		Data: map[string]any{
			"Code":             code,
			"ExpiresInMinutes": int(d.Store.TTL.Minutes()),
		},
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.Pub.PublishJSON(ctx, job); err != nil && d.Logger != nil {
			d.Logger.WithError(err).WithField("email", email).Warn("failed to enqueue otp email")
		}
	}()

	return nil
}
