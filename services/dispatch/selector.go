package dispatch

import (
	"strings"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/internal/enum"
	"github.com/wrdo/mailrouter/internal/whitelist"
)

// ActionSet is ordered and duplicate free. NORMAL_SAVE is present iff no forwarding action is.
type ActionSet []enum.DeliveryAction

func (s ActionSet) Contains(action enum.DeliveryAction) bool {
	for _, a := range s {
		if a == action {
			return true
		}
	}
	return false
}

func (s ActionSet) String() string {
	parts := make([]string, len(s))
	for i, a := range s {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

// SelectActions decides where a message goes. The forward whitelist gates catch-all and
// external forwarding together.
func SelectActions(email *dto.InboundEmail, cfg *dto.FeatureConfig) ActionSet {
	inForwardWhiteList := whitelist.IsAllowed(email.To, cfg.Forward.WhiteList)

	catchAll := cfg.CatchAll.Enabled && inForwardWhiteList
	externalForward := cfg.Forward.Enabled && inForwardWhiteList

	actions := make(ActionSet, 0, 2)
	if catchAll {
		actions = append(actions, enum.DeliveryCatchAll)
	}
	if externalForward {
		actions = append(actions, enum.DeliveryExternalForward)
	}
	if !catchAll && !externalForward {
		actions = append(actions, enum.DeliveryNormalSave)
	}
	return actions
}
