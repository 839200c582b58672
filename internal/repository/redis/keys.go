package redisrepo

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "tixevents:v1"

func KeyEvent(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s", ns, eventID)
}

func KeyIdemCreateEvent(callerID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:events:%s:%s", ns, callerID, idemKey)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelEventsChanged() string {
	return ns + ":events:changed"
}
