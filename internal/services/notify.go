package services

import (
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// Pusher sends a push notification about a new post to a single device.
type Pusher interface {
	PushNewPost(deviceToken, authorUsername, caption string) error
}

// APNsPusher delivers new-post alerts through Apple Push Notification
// service.
type APNsPusher struct {
	client *apns2.Client
	topic  string
}

// NewAPNsPusher loads the .p12 credential and returns a pusher.
func NewAPNsPusher(certFile, certPassword, topic string, production bool) (*APNsPusher, error) {
	cert, err := certificate.FromP12File(certFile, certPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{client: client, topic: topic}, nil
}

// PushNewPost sends an alert naming the author and caption.
func (p *APNsPusher) PushNewPost(deviceToken, authorUsername, caption string) error {
	body := payload.NewPayload().
		AlertTitle(fmt.Sprintf("%s posted a photo", authorUsername)).
		AlertBody(caption).
		Sound("default")

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		Payload:     body,
	}

	res, err := p.client.Push(notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("notification rejected: %s", res.Reason)
	}
	return nil
}
