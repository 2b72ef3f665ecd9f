package broker

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sage-x-project/sage-relay/wire"
)

// lookupRequest is the discovery endpoint's single request shape. Op
// selects GET_AGENT / FIND / LIST_ALL; Address and Query are used
// depending on Op.
type lookupRequest struct {
	Op      string `json:"op"`
	Address string `json:"address,omitempty"`
	Query   string `json:"query,omitempty"`
}

type lookupResponse struct {
	Agent   *Record  `json:"agent,omitempty"`
	Agents  []Record `json:"agents,omitempty"`
	ErrMsg  string   `json:"error,omitempty"`
}

// handleLookup serves /ws/lookup: a single request/response exchange
// per connection, mirroring the dispatch endpoint's one-shot shape.
func (b *Broker) handleLookup(w http.ResponseWriter, r *http.Request) {
	raw, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("lookup upgrade failed", zap.Error(err))
		return
	}
	defer raw.Close()

	_, frame, err := raw.ReadMessage()
	if err != nil {
		return
	}

	var req lookupRequest
	if err := json.Unmarshal(frame, &req); err != nil {
		_ = raw.WriteJSON(lookupResponse{ErrMsg: wire.ErrMalformedMessage.Error()})
		return
	}

	switch req.Op {
	case "GET_AGENT":
		rec, ok := b.registry.Lookup(req.Address)
		if !ok {
			_ = raw.WriteJSON(lookupResponse{})
			return
		}
		_ = raw.WriteJSON(lookupResponse{Agent: &rec})

	case "FIND":
		records := b.registry.Find(req.Query, b.cfg.LookupFindCap)
		_ = raw.WriteJSON(lookupResponse{Agents: records})

	case "LIST_ALL":
		records := b.registry.ListAll(b.cfg.LookupListCap)
		_ = raw.WriteJSON(lookupResponse{Agents: records})

	default:
		_ = raw.WriteJSON(lookupResponse{ErrMsg: wire.ErrUnknownType.Error()})
	}
}
