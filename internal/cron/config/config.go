package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Inbox and delivery log retention, daily at 03:00
	CronScheduleRetention string `env:"CRON_SCHEDULE_RETENTION" envDefault:"0 0 3 * * *"`
	// 0 keeps stored mail forever
	InboxRetentionDays int `env:"INBOX_RETENTION_DAYS" envDefault:"0"`
	// 0 keeps delivery logs forever
	DeliveryLogRetentionDays int `env:"DELIVERY_LOG_RETENTION_DAYS" envDefault:"30"`
}
