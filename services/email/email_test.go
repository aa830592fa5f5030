package emailsvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/fs"
	"github.com/edumedsolutions/edumed/tests"
)

type contactData struct {
	FirstName, LastName, Email, Phone, Subject, Message string
}

func newContactMessage() *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Consultants", Address: "consultants@localhost"}},
		Subject:      "New contact message",
		TemplateName: "contact_notification",
		TemplateData: contactData{
			FirstName: "Jane", LastName: "Doe", Email: "jane@x.io", Subject: "visa", Message: "I need help",
		},
	}
}

func TestConsoleService(t *testing.T) {
	conf := core.NewTestConfig()
	logger := testutil.NewLogger(t)
	core.ParseEmailTemplates(appfs.Templates, appfs.EmailTemplatesDir, conf.FrontendBaseURL, true, logger)

	svc := NewConsoleServiceMock(conf, logger)
	require.NoError(t, svc.SendMessage(context.Background(), newContactMessage()))
	svc.SendMessages(&core.EmailMessage{Subject: "no recipient", BodyStr: "dropped"})

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Jane Doe")
	assert.Contains(t, sent[0].TextContent, "I need help")
	assert.Contains(t, sent[0].HTMLContent, "jane@x.io")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, svc.SendMessage(ctx, newContactMessage()))
}

func TestSendgridService(t *testing.T) {
	conf := core.NewTestConfig()
	conf.SendgridApiKey = "sg-key"
	logger := testutil.NewLogger(t)
	core.ParseEmailTemplates(appfs.Templates, appfs.EmailTemplatesDir, conf.FrontendBaseURL, true, logger)

	var gotAuth string
	var gotBody map[string]interface{}
	status := http.StatusAccepted
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, endpoint, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"errors":[{"message":"nope"}]}`))
	}))
	defer srv.Close()

	svc := NewSendgridService(conf, logger)
	svc.host = srv.URL

	msg := newContactMessage()
	msg.ReplyTo = &mail.Address{Address: "jane@x.io"}
	require.NoError(t, svc.SendMessage(context.Background(), msg))
	assert.Equal(t, "Bearer sg-key", gotAuth)
	assert.Equal(t, "jane@x.io", gotBody["reply_to"].(map[string]interface{})["email"])
	content := gotBody["content"].([]interface{})
	assert.Len(t, content, 2)
	assert.NotContains(t, gotBody, "attachments")

	status = http.StatusUnauthorized
	err := svc.SendMessage(context.Background(), newContactMessage())
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "status: 401")
	}

	status = http.StatusAccepted
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = svc.SendMessage(ctx, newContactMessage())
	if assert.Error(t, err) {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
