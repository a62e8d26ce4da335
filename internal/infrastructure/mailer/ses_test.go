package mailer

import (
	"context"
	"errors"
	"testing"

	"family_hub_server/internal/config"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESMailerInvitation(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, &config.MailConfig{FromEmail: "noreply@example.com", FromName: "Family Hub", AppBaseURL: "https://app.example.com"})

	err := m.SendEventInvitation(context.Background(), InvitationMail{
		ToEmail:     "guest@example.com",
		ToName:      "Guest",
		InviterName: "Ann",
		EventID:     "e1",
		EventTitle:  "Picnic <3",
	})
	require.NoError(t, err)
	require.Len(t, client.inputs, 1)

	input := client.inputs[0]
	assert.Equal(t, "Family Hub <noreply@example.com>", *input.FromEmailAddress)
	assert.Equal(t, []string{"guest@example.com"}, input.Destination.ToAddresses)
	assert.Equal(t, "Ann invited you to Picnic <3", *input.Content.Simple.Subject.Data)
	assert.Contains(t, *input.Content.Simple.Body.Html.Data, "Picnic &lt;3")
	assert.Contains(t, *input.Content.Simple.Body.Text.Data, "https://app.example.com/events/e1")
}

func TestSESMailerWrapsError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	m := newSESMailer(client, &config.MailConfig{FromEmail: "a@b.c", FromName: "X"})

	err := m.SendWelcome(context.Background(), "u@example.com", "U")
	assert.Error(t, err)
}

func TestInitWithoutSenderUsesLogMailer(t *testing.T) {
	m, err := Init(context.Background(), &config.MailConfig{})
	require.NoError(t, err)
	assert.NoError(t, m.SendWelcome(context.Background(), "u@example.com", "U"))
}
