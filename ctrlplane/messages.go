package ctrlplane

// InitiateCallRequest asks the sidecar to place an outbound call to peer
// over whichever LinkTransport the hosting process already registered for
// that peer (see service.Service.RegisterPeerLink).
type InitiateCallRequest struct {
	Peer        string `json:"peer"`
	Audio       bool   `json:"audio"`
	Video       bool   `json:"video"`
	ScreenShare bool   `json:"screen_share"`
}

// InitiateCallReply carries the new call's ID, or an error.
type InitiateCallReply struct {
	CallID string `json:"call_id,omitempty"`
	Err    string `json:"err,omitempty"`
}

// AcceptCallRequest/RejectCallRequest name the call to accept or reject.
type AcceptCallRequest struct {
	CallID string `json:"call_id"`
}

type RejectCallRequest struct {
	CallID string `json:"call_id"`
}

// OkReply is the common ok/err reply shape for accept/reject/end.
type OkReply struct {
	Ok  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

// StatusRequest asks for one call's current lifecycle state.
type StatusRequest struct {
	CallID string `json:"call_id"`
}

// StatusReply carries a call's lifecycle state. Server fills only Found and
// State; the quality fields are always left zero, since service.Service
// exposes no quality sample to read.
type StatusReply struct {
	Found             bool    `json:"found"`
	State             string  `json:"state"`
	PacketLossPercent float64 `json:"packet_loss_percent,omitempty"`
	JitterMs          float64 `json:"jitter_ms,omitempty"`
	RoundTripMs       float64 `json:"round_trip_ms,omitempty"`
}

// EndCallRequest asks the sidecar to tear down a call.
type EndCallRequest struct {
	CallID string `json:"call_id"`
}

// ListActiveCallsRequest takes no parameters; kept as a struct for
// symmetry with the rest of the service and room to add filters later.
type ListActiveCallsRequest struct{}

// ListActiveCallsReply carries a list of call IDs. Server always returns it
// empty: service.Service exposes no registry enumeration.
type ListActiveCallsReply struct {
	CallIDs []string `json:"call_ids"`
}
