package whatsapp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/feedlot/internal/config"
	"github.com/mamadbah2/feedlot/internal/domain/models"
)

type sentMessage struct {
	to   string
	body string
}

type fakeClient struct {
	sent []sentMessage
	err  error
}

func (f *fakeClient) SendText(_ context.Context, to, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return "wamid", nil
}

type call struct {
	caller models.Caller
	cmd    models.Command
}

type fakeDispatcher struct {
	calls []call
	reply string
	err   error
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, caller models.Caller, cmd models.Command) (string, error) {
	f.calls = append(f.calls, call{caller: caller, cmd: cmd})
	return f.reply, f.err
}

func testConfig() config.WhatsAppConfig {
	return config.WhatsAppConfig{
		VerifyToken:   "verify-me",
		ManagerNumber: "224600000002",
		Senders: map[string]config.Sender{
			"224600000001": {UserID: "wa:224600000001", Role: "OPERATOR"},
		},
	}
}

func textPayload(from, body string) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{
		Value: models.WebhookValue{Messages: []models.InboundMessage{{
			From: from, ID: "m1", Type: "text", Text: &models.TextContent{Body: body},
		}}},
	}}}}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewService(testConfig(), &fakeClient{}, &fakeDispatcher{}, nil)

	challenge, err := svc.VerifyWebhookToken("subscribe", "verify-me", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "abc")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "verify-me", "abc")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "abc")
	assert.Error(t, err)
}

func TestHandleWebhookDispatchesForRegisteredSender(t *testing.T) {
	wa := &fakeClient{}
	dispatcher := &fakeDispatcher{reply: "Weight recorded for FL-9: 340.0 kg."}
	svc := NewService(testConfig(), wa, dispatcher, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("+224600000001", "/weigh FL-9 340")))

	require.Len(t, dispatcher.calls, 1)
	assert.Equal(t, models.Caller{UserID: "wa:224600000001", Role: models.RoleOperator}, dispatcher.calls[0].caller)
	assert.Equal(t, models.CommandWeigh, dispatcher.calls[0].cmd.Type)
	assert.Equal(t, []sentMessage{{to: "+224600000001", body: "Weight recorded for FL-9: 340.0 kg."}}, wa.sent)
}

func TestHandleWebhookRepliesWithErrorText(t *testing.T) {
	wa := &fakeClient{}
	svc := NewService(testConfig(), wa, &fakeDispatcher{err: models.ErrInsufficientStock}, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("224600000001", "/feed m1 500")))
	require.Len(t, wa.sent, 1)
	assert.Equal(t, "Not enough stock for that quantity.", wa.sent[0].body)
}

func TestHandleWebhookRefusesUnregisteredSender(t *testing.T) {
	wa := &fakeClient{}
	dispatcher := &fakeDispatcher{}
	svc := NewService(testConfig(), wa, dispatcher, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("224699999999", "/summary")))
	assert.Empty(t, dispatcher.calls)
	require.Len(t, wa.sent, 1)
	assert.Equal(t, unregisteredText, wa.sent[0].body)
}

func TestHandleWebhookIgnoresStatusUpdates(t *testing.T) {
	wa := &fakeClient{}
	svc := NewService(testConfig(), wa, &fakeDispatcher{}, nil)

	payload := models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{Field: "messages"}}}}}
	require.NoError(t, svc.HandleWebhook(context.Background(), payload))
	assert.Empty(t, wa.sent)
}

func TestHandleWebhookReturnsSendFailure(t *testing.T) {
	svc := NewService(testConfig(), &fakeClient{err: errors.New("timeout")}, &fakeDispatcher{reply: "ok"}, nil)

	err := svc.HandleWebhook(context.Background(), textPayload("224600000001", "/help"))
	assert.ErrorContains(t, err, "timeout")
}

func TestNotifyManager(t *testing.T) {
	wa := &fakeClient{}
	svc := NewService(testConfig(), wa, &fakeDispatcher{}, nil)

	require.NoError(t, svc.NotifyManager(context.Background(), "Low stock alert"))
	assert.Equal(t, []sentMessage{{to: "224600000002", body: "Low stock alert"}}, wa.sent)

	cfg := testConfig()
	cfg.ManagerNumber = ""
	svc = NewService(cfg, wa, &fakeDispatcher{}, nil)
	assert.ErrorIs(t, svc.NotifyManager(context.Background(), "x"), ErrNoManagerNumber)
}
