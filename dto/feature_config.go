package dto

import (
	"strings"

	"github.com/wrdo/mailrouter/internal/enum"
)

// FeatureConfig is the typed snapshot of every routing setting, read once per dispatch.
type FeatureConfig struct {
	CatchAll CatchAllConfig
	Forward  ForwardConfig
	Telegram TelegramConfig
	Webhook  WebhookConfig
}

type CatchAllConfig struct {
	Enabled bool
	Targets string
}

type ForwardConfig struct {
	Enabled   bool
	Targets   string
	WhiteList string
}

type TelegramConfig struct {
	Enabled   bool
	BotToken  string
	ChatIds   string
	Template  string
	WhiteList string
}

type WebhookConfig struct {
	Enabled   bool
	Url       string
	Secret    string
	Method    string
	Headers   string
	Template  string
	WhiteList string
}

// NewFeatureConfig builds the snapshot from raw key/value rows. Missing keys read as
// disabled or empty.
func NewFeatureConfig(values map[string]string) *FeatureConfig {
	str := func(key enum.SystemConfigKey) string {
		return values[key.String()]
	}
	flag := func(key enum.SystemConfigKey) bool {
		return ParseConfigBool(values[key.String()])
	}

	return &FeatureConfig{
		CatchAll: CatchAllConfig{
			Enabled: flag(enum.ConfigEnableEmailCatchAll),
			Targets: str(enum.ConfigCatchAllEmails),
		},
		Forward: ForwardConfig{
			Enabled:   flag(enum.ConfigEnableEmailForward),
			Targets:   str(enum.ConfigEmailForwardTargets),
			WhiteList: str(enum.ConfigEmailForwardWhiteList),
		},
		Telegram: TelegramConfig{
			Enabled:   flag(enum.ConfigEnableTgEmailPush),
			BotToken:  str(enum.ConfigTgEmailBotToken),
			ChatIds:   str(enum.ConfigTgEmailChatId),
			Template:  str(enum.ConfigTgEmailTemplate),
			WhiteList: str(enum.ConfigTgEmailTargetWhiteList),
		},
		Webhook: WebhookConfig{
			Enabled:   flag(enum.ConfigEnableWebhookPush),
			Url:       str(enum.ConfigWebhookUrl),
			Secret:    str(enum.ConfigWebhookSecret),
			Method:    str(enum.ConfigWebhookMethod),
			Headers:   str(enum.ConfigWebhookHeaders),
			Template:  str(enum.ConfigWebhookTemplate),
			WhiteList: str(enum.ConfigWebhookTargetWhiteList),
		},
	}
}

func ParseConfigBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
