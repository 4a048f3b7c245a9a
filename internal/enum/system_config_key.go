package enum

// SystemConfigKey names a row of the system_configs table.
type SystemConfigKey string

const (
	ConfigEnableEmailCatchAll SystemConfigKey = "enable_email_catch_all"
	ConfigCatchAllEmails      SystemConfigKey = "catch_all_emails"

	ConfigEnableEmailForward    SystemConfigKey = "enable_email_forward"
	ConfigEmailForwardTargets   SystemConfigKey = "email_forward_targets"
	ConfigEmailForwardWhiteList SystemConfigKey = "email_forward_white_list"

	ConfigEnableTgEmailPush      SystemConfigKey = "enable_tg_email_push"
	ConfigTgEmailBotToken        SystemConfigKey = "tg_email_bot_token"
	ConfigTgEmailChatId          SystemConfigKey = "tg_email_chat_id"
	ConfigTgEmailTemplate        SystemConfigKey = "tg_email_template"
	ConfigTgEmailTargetWhiteList SystemConfigKey = "tg_email_target_white_list"

	ConfigEnableWebhookPush      SystemConfigKey = "enable_webhook_push"
	ConfigWebhookUrl             SystemConfigKey = "webhook_url"
	ConfigWebhookSecret          SystemConfigKey = "webhook_secret"
	ConfigWebhookMethod          SystemConfigKey = "webhook_method"
	ConfigWebhookHeaders         SystemConfigKey = "webhook_headers"
	ConfigWebhookTemplate        SystemConfigKey = "webhook_template"
	ConfigWebhookTargetWhiteList SystemConfigKey = "webhook_target_white_list"
)

func (k SystemConfigKey) String() string {
	return string(k)
}

// DispatchConfigKeys is the full set of keys loaded for one dispatch.
var DispatchConfigKeys = []SystemConfigKey{
	ConfigEnableEmailCatchAll,
	ConfigCatchAllEmails,
	ConfigEnableEmailForward,
	ConfigEmailForwardTargets,
	ConfigEmailForwardWhiteList,
	ConfigEnableTgEmailPush,
	ConfigTgEmailBotToken,
	ConfigTgEmailChatId,
	ConfigTgEmailTemplate,
	ConfigTgEmailTargetWhiteList,
	ConfigEnableWebhookPush,
	ConfigWebhookUrl,
	ConfigWebhookSecret,
	ConfigWebhookMethod,
	ConfigWebhookHeaders,
	ConfigWebhookTemplate,
	ConfigWebhookTargetWhiteList,
}

func DispatchConfigKeyNames() []string {
	names := make([]string, len(DispatchConfigKeys))
	for i, key := range DispatchConfigKeys {
		names[i] = key.String()
	}
	return names
}

type SystemConfigType string

const (
	SystemConfigBoolean SystemConfigType = "BOOLEAN"
	SystemConfigString  SystemConfigType = "STRING"
	SystemConfigNumber  SystemConfigType = "NUMBER"
	SystemConfigObject  SystemConfigType = "OBJECT"
)
