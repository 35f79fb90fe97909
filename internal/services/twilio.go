package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioGateway is the WhatsApp driver for NotificationGateway. The channel id
// of a device is the destination phone number; the Twilio message SID serves
// as the correlation key. WhatsApp cannot edit a sent message, so the mark
// operations send short follow-up status messages instead.
type TwilioGateway struct {
	client *twilio.RestClient
	from   string // Your Twilio WhatsApp number
}

// NewTwilioGateway creates a new Twilio-backed gateway
func NewTwilioGateway() (*TwilioGateway, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_WHATSAPP_FROM") // Format: "whatsapp:+14155238886"

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioGateway{
		client: client,
		from:   from,
	}, nil
}

// PostHelpRequest sends the help message over WhatsApp
func (t *TwilioGateway) PostHelpRequest(ctx context.Context, message, channelID, deviceID string) (*PostedMessage, error) {
	sid, err := t.send(channelID, message)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp help request for device %s: %v", deviceID, err)
		return nil, err
	}

	log.Printf("✅ WhatsApp help request sent! SID: %s", sid)
	return &PostedMessage{MessageID: sid, ChannelID: channelID}, nil
}

// MarkTimedOut sends a follow-up noting the request went unanswered
func (t *TwilioGateway) MarkTimedOut(ctx context.Context, messageID, channelID string) error {
	_, err := t.send(channelID, "⏰ The help request above timed out without a response.")
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp timeout notice for %s: %v", messageID, err)
	}
	return err
}

// MarkReplied sends a follow-up noting the request got a reply
func (t *TwilioGateway) MarkReplied(ctx context.Context, messageID, channelID string) error {
	_, err := t.send(channelID, "💬 Someone is responding to the help request above.")
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp replied notice for %s: %v", messageID, err)
	}
	return err
}

func (t *TwilioGateway) send(to string, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}

	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		return "", fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, *resp.ErrorMessage)
	}

	if resp.Sid == nil {
		return "", fmt.Errorf("twilio response missing message SID")
	}
	return *resp.Sid, nil
}
