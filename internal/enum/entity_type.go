package enum

type EntityType string

const (
	FORWARD_EMAIL EntityType = "FORWARD_EMAIL"
	INBOUND_EMAIL EntityType = "INBOUND_EMAIL"
)

func (entityType EntityType) String() string {
	return string(entityType)
}
