package live

import (
	"strings"

	"runetick/internal/market"
)

const (
	OpSubscribe   = "subscribe"
	OpUnsubscribe = "unsubscribe"

	TypeSnapshot = "snapshot"
	TypeDelta    = "delta"

	topicPrefix = "prices."
)

// Command is a client request, e.g. {"op":"subscribe","args":["prices.2","4151"]}.
type Command struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

// Update carries the quotes of the subscribed items. A snapshot answers a
// subscription, a delta follows every refresh.
type Update struct {
	Topic string                  `json:"topic"`
	Type  string                  `json:"type"`
	Data  map[string]market.Quote `json:"data"`
	Ts    int64                   `json:"ts"` // unix milliseconds
}

// itemFromTopic returns the item ID of a topic like "prices.4151". A bare ID is accepted as well.
func itemFromTopic(topic string) string {
	return strings.TrimPrefix(topic, topicPrefix)
}

func filter(quotes map[string]market.Quote, subs map[string]struct{}) map[string]market.Quote {
	out := make(map[string]market.Quote, len(subs))
	for id := range subs {
		if q, ok := quotes[id]; ok {
			out[id] = q
		}
	}
	return out
}
