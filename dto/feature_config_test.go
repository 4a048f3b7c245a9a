package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFeatureConfig_MissingKeysAreDisabled(t *testing.T) {
	cfg := NewFeatureConfig(map[string]string{})

	assert.False(t, cfg.CatchAll.Enabled)
	assert.False(t, cfg.Forward.Enabled)
	assert.False(t, cfg.Telegram.Enabled)
	assert.False(t, cfg.Webhook.Enabled)
	assert.Empty(t, cfg.Forward.Targets)
	assert.Empty(t, cfg.Webhook.Url)
}

func TestNewFeatureConfig_MapsEveryKey(t *testing.T) {
	cfg := NewFeatureConfig(map[string]string{
		"enable_email_catch_all":     "true",
		"catch_all_emails":           "ops@x.com",
		"enable_email_forward":       "TRUE",
		"email_forward_targets":      "me@y.com",
		"email_forward_white_list":   "a@x.com",
		"enable_tg_email_push":       "1",
		"tg_email_bot_token":         "123:abc",
		"tg_email_chat_id":           "1,2",
		"tg_email_template":          "{{subject}}",
		"tg_email_target_white_list": "a@x.com",
		"enable_webhook_push":        "false",
		"webhook_url":                "https://hook",
		"webhook_secret":             "s",
		"webhook_method":             "put",
		"webhook_headers":            `{"X-A":"1"}`,
		"webhook_template":           `"hi"`,
		"webhook_target_white_list":  "b@x.com",
	})

	assert.True(t, cfg.CatchAll.Enabled)
	assert.Equal(t, "ops@x.com", cfg.CatchAll.Targets)
	assert.True(t, cfg.Forward.Enabled)
	assert.Equal(t, "me@y.com", cfg.Forward.Targets)
	assert.Equal(t, "a@x.com", cfg.Forward.WhiteList)
	assert.True(t, cfg.Telegram.Enabled)
	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "1,2", cfg.Telegram.ChatIds)
	assert.Equal(t, "{{subject}}", cfg.Telegram.Template)
	assert.False(t, cfg.Webhook.Enabled)
	assert.Equal(t, "https://hook", cfg.Webhook.Url)
	assert.Equal(t, "put", cfg.Webhook.Method)
	assert.Equal(t, `"hi"`, cfg.Webhook.Template)
	assert.Equal(t, "b@x.com", cfg.Webhook.WhiteList)
}

func TestParseConfigBool(t *testing.T) {
	for _, v := range []string{"true", "True", " 1 ", "yes", "on"} {
		assert.True(t, ParseConfigBool(v), v)
	}
	for _, v := range []string{"", "false", "0", "off", "enabled"} {
		assert.False(t, ParseConfigBool(v), v)
	}
}

func TestInboundEmail_WithRecipientCopies(t *testing.T) {
	original := InboundEmail{From: "s@x.com", To: "a@x.com", Subject: "Hi"}
	copied := original.WithRecipient("ops@x.com")

	assert.Equal(t, "ops@x.com", copied.To)
	assert.Equal(t, "Hi", copied.Subject)
	assert.Equal(t, "a@x.com", original.To)
}

func TestInboundEmail_SenderDisplay(t *testing.T) {
	assert.Equal(t, "Alice <a@x.com>", (&InboundEmail{From: "a@x.com", FromName: "Alice"}).SenderDisplay())
	assert.Equal(t, "a@x.com", (&InboundEmail{From: "a@x.com"}).SenderDisplay())
}
