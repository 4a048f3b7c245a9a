package config

type AppConfig struct {
	APIPort       string `env:"PORT,required" envDefault:"12222"`
	CatcherAPIKey string `env:"CATCHER_API_KEY"`
	RabbitMQURL   string `env:"RABBITMQ_URL"`
	PodName       string `env:"POD_NAME" envDefault:"local"`
	Namespace     string `env:"POD_NAMESPACE" envDefault:"default"`
	LocalDev      bool   `env:"LOCAL_DEV" envDefault:"false"`
}

type DatabaseConfig struct {
	Driver          string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	Host            string `env:"DATABASE_HOST"`
	Port            string `env:"DATABASE_PORT" envDefault:"5432"`
	User            string `env:"DATABASE_USER"`
	DBName          string `env:"DATABASE_NAME"`
	Password        string `env:"DATABASE_PASSWORD"`
	SSLMode         string `env:"DATABASE_SSL_MODE" envDefault:"require"`
	SQLitePath      string `env:"DATABASE_SQLITE_PATH" envDefault:"mailrouter.db"`
	MaxConn         int    `env:"DATABASE_MAX_CONN"`
	MaxIdleConn     int    `env:"DATABASE_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"DATABASE_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"DATABASE_LOG_LEVEL" envDefault:"WARN"`
}

// OutboundConfig selects the provider used to relay externally forwarded mail.
type OutboundConfig struct {
	Provider string `env:"OUTBOUND_PROVIDER" envDefault:"brevo"`

	BrevoURL    string `env:"BREVO_API_URL" envDefault:"https://api.brevo.com/v3/smtp/email"`
	BrevoAPIKey string `env:"BREVO_API_KEY"`

	SESRegion          string `env:"SES_REGION" envDefault:"us-east-1"`
	SESAccessKeyID     string `env:"SES_ACCESS_KEY_ID"`
	SESSecretAccessKey string `env:"SES_SECRET_ACCESS_KEY"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPImplicit bool   `env:"SMTP_IMPLICIT_TLS" envDefault:"false"`

	TimeoutSeconds int `env:"OUTBOUND_TIMEOUT_SECONDS" envDefault:"30"`
}

type TelegramConfig struct {
	APIPrefix      string `env:"TELEGRAM_API_PREFIX" envDefault:"https://api.telegram.org/"`
	TimeoutSeconds int    `env:"TELEGRAM_TIMEOUT_SECONDS" envDefault:"10"`
}

type WebhookConfig struct {
	TimeoutSeconds int `env:"WEBHOOK_TIMEOUT_SECONDS" envDefault:"10"`
}

type BrandConfig struct {
	Name string `env:"BRAND_NAME" envDefault:"WR.DO"`
	URL  string `env:"BRAND_URL" envDefault:"https://wr.do"`
}

// StorageConfig points at the bucket holding inbound attachments. An empty provider disables cleanup.
type StorageConfig struct {
	Provider        string `env:"STORAGE_PROVIDER"`
	Bucket          string `env:"STORAGE_BUCKET"`
	R2AccountID     string `env:"STORAGE_R2_ACCOUNT_ID"`
	S3Region        string `env:"STORAGE_S3_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"STORAGE_SECRET_ACCESS_KEY"`
}
