package enum

type DeliveryAction string

const (
	DeliveryCatchAll        DeliveryAction = "CATCH_ALL"
	DeliveryExternalForward DeliveryAction = "EXTERNAL_FORWARD"
	DeliveryNormalSave      DeliveryAction = "NORMAL_SAVE"
)

func (a DeliveryAction) String() string {
	return string(a)
}

type PushChannel string

const (
	PushTelegram PushChannel = "telegram"
	PushWebhook  PushChannel = "webhook"
)

func (c PushChannel) String() string {
	return string(c)
}
