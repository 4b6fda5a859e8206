package fetch

import (
	"math/rand/v2"
)

// Identity rotates the browser identity presented on every request.
type Identity struct {
	userAgents []string
	pick       func(n int) int
}

func NewIdentity(userAgents []string) *Identity {
	return &Identity{
		userAgents: userAgents,
		pick:       rand.IntN,
	}
}

// Headers returns a fresh header set with a randomly chosen User-Agent.
func (id *Identity) Headers() map[string]string {
	h := map[string]string{
		"Accept-Language": "en-US,en;q=0.9",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Referer":         "https://www.google.com/",
	}
	if len(id.userAgents) > 0 {
		h["User-Agent"] = id.userAgents[id.pick(len(id.userAgents))]
	}
	return h
}
