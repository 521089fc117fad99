// Package push delivers Web-Push notifications signed with VAPID keys.
package push

import (
	"context"
	"encoding/json"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"

	"focuscoach/internal/model"
)

// Message is the payload rendered by the service worker.
type Message struct {
	Title              string `json:"title"`
	Body               string `json:"body"`
	URL                string `json:"url"`
	RequireInteraction bool   `json:"requireInteraction,omitempty"`
}

// Sender sends push messages to stored subscriptions.
type Sender struct {
	subject    string
	publicKey  string
	privateKey string
	ttl        int
}

// NewSender creates a sender. Both VAPID keys are required.
func NewSender(subject, publicKey, privateKey string) (*Sender, error) {
	if publicKey == "" || privateKey == "" {
		return nil, fmt.Errorf("VAPID keys required")
	}
	return &Sender{
		subject:    subject,
		publicKey:  publicKey,
		privateKey: privateKey,
		ttl:        60,
	}, nil
}

// Send delivers one message to one subscription. Failures are returned to
// the caller for logging; they never affect other subscribers.
func (s *Sender) Send(ctx context.Context, sub model.Subscription, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push endpoint status %d", resp.StatusCode)
	}
	return nil
}

// GenerateVAPIDKeys creates a new key pair for deployment setup.
func GenerateVAPIDKeys() (privateKey, publicKey string, err error) {
	return webpush.GenerateVAPIDKeys()
}
