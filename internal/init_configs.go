package internal

import (
	"context"

	"github.com/wrdo/mailrouter/internal/enum"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/models"
	"github.com/wrdo/mailrouter/internal/repository"
)

type configDefault struct {
	key         enum.SystemConfigKey
	value       string
	valueType   enum.SystemConfigType
	description string
}

var dispatchConfigDefaults = []configDefault{
	{enum.ConfigEnableEmailCatchAll, "false", enum.SystemConfigBoolean, "Store every inbound email in the catch-all mailboxes"},
	{enum.ConfigCatchAllEmails, "", enum.SystemConfigString, "Comma separated catch-all mailbox addresses"},
	{enum.ConfigEnableEmailForward, "false", enum.SystemConfigBoolean, "Forward inbound email to external addresses"},
	{enum.ConfigEmailForwardTargets, "", enum.SystemConfigString, "Comma separated external forward addresses"},
	{enum.ConfigEmailForwardWhiteList, "", enum.SystemConfigString, "Recipients eligible for catch-all and forward, empty allows all"},
	{enum.ConfigEnableTgEmailPush, "false", enum.SystemConfigBoolean, "Push inbound email to Telegram"},
	{enum.ConfigTgEmailBotToken, "", enum.SystemConfigString, "Telegram bot token"},
	{enum.ConfigTgEmailChatId, "", enum.SystemConfigString, "Comma separated Telegram chat ids"},
	{enum.ConfigTgEmailTemplate, "", enum.SystemConfigString, "Telegram message template"},
	{enum.ConfigTgEmailTargetWhiteList, "", enum.SystemConfigString, "Recipients pushed to Telegram, empty allows all"},
	{enum.ConfigEnableWebhookPush, "false", enum.SystemConfigBoolean, "Push inbound email to a webhook"},
	{enum.ConfigWebhookUrl, "", enum.SystemConfigString, "Webhook url"},
	{enum.ConfigWebhookSecret, "", enum.SystemConfigString, "HMAC-SHA256 signing secret"},
	{enum.ConfigWebhookMethod, "POST", enum.SystemConfigString, "POST or PUT"},
	{enum.ConfigWebhookHeaders, "", enum.SystemConfigObject, "JSON object of extra request headers"},
	{enum.ConfigWebhookTemplate, "", enum.SystemConfigObject, "JSON string or object payload template"},
	{enum.ConfigWebhookTargetWhiteList, "", enum.SystemConfigString, "Recipients pushed to the webhook, empty allows all"},
}

// InitSystemConfigs inserts the routing settings that do not exist yet. Existing values are
// never touched. Returns the number of rows created.
func InitSystemConfigs(ctx context.Context, r *repository.Repositories, log logger.Logger) (int, error) {
	log.Info("Initializing system configs...")

	created := 0
	for _, def := range dispatchConfigDefaults {
		existing, err := r.SystemConfigRepository.GetConfig(ctx, def.key.String())
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		err = r.SystemConfigRepository.SetConfig(ctx, &models.SystemConfig{
			Key:         def.key.String(),
			Value:       def.value,
			Type:        def.valueType,
			Description: def.description,
		})
		if err != nil {
			return created, err
		}
		created++
	}

	log.Infof("System configs initialized, %d created", created)
	return created, nil
}
