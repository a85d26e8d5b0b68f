package push

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pvieira/tarefinha/internal/model"
	"github.com/pvieira/tarefinha/internal/store"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Payload is the JSON sent to the push service.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Config holds VAPID configuration.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

// Service handles sending web push notifications.
type Service struct {
	publicKey  string
	privateKey string
	subs       *store.PushStore
	logger     *slog.Logger
}

// NewService creates a new push service with VAPID keys.
func NewService(publicKey, privateKey string, subs *store.PushStore, logger *slog.Logger) *Service {
	return &Service{
		publicKey:  publicKey,
		privateKey: privateKey,
		subs:       subs,
		logger:     logger.With("component", "push"),
	}
}

// Enabled reports whether VAPID keys are configured. When they are not,
// broadcast calls become no-ops.
func (s *Service) Enabled() bool {
	return s.publicKey != "" && s.privateKey != ""
}

// VAPIDPublicKey returns the VAPID public key for client-side subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.publicKey
}

// Send sends a push notification to a subscription.
func (s *Service) Send(sub *model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      "mailto:noreply@tarefinha.app",
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}

// Broadcast sends a payload to every registered device, pruning expired
// subscriptions as it goes. Failures are logged and do not interrupt the
// remaining sends.
func (s *Service) Broadcast(payload Payload) {
	if !s.Enabled() {
		return
	}
	subs, err := s.subs.List()
	if err != nil {
		s.logger.Error("list subscriptions", "error", err)
		return
	}
	for i := range subs {
		if err := s.Send(&subs[i], payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.subs.DeleteByEndpoint(subs[i].Endpoint)
				continue
			}
			s.logger.Error("send notification", "endpoint", subs[i].Endpoint, "error", err)
		}
	}
}

// NotifyMember sends a payload to the devices registered for one member.
// Devices without a member association receive it too, since shared family
// tablets register without picking a person.
func (s *Service) NotifyMember(memberID int64, payload Payload) {
	if !s.Enabled() {
		return
	}
	subs, err := s.subs.List()
	if err != nil {
		s.logger.Error("list subscriptions", "error", err)
		return
	}
	for i := range subs {
		if subs[i].MemberID != nil && *subs[i].MemberID != memberID {
			continue
		}
		if err := s.Send(&subs[i], payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.subs.DeleteByEndpoint(subs[i].Endpoint)
				continue
			}
			s.logger.Error("send notification", "endpoint", subs[i].Endpoint, "error", err)
		}
	}
}

// GenerateVAPIDKeys generates a new ECDSA P-256 key pair for VAPID.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ECDSA key: %w", err)
	}

	pubBytes := elliptic.Marshal(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)
	publicKey = base64.RawURLEncoding.EncodeToString(pubBytes)
	privateKey = base64.RawURLEncoding.EncodeToString(key.D.Bytes())

	return publicKey, privateKey, nil
}
