package enum

// EmailSource names the entry point an inbound message arrived through.
type EmailSource string

const (
	EmailSourceCatcherAPI EmailSource = "catcher-api"
	EmailSourceRabbitMQ   EmailSource = "rabbitmq"
)

func (s EmailSource) String() string {
	return string(s)
}
