package domain

// Downstream actions.
const (
	ActionJoin = "join"
)

// Join ack status.
const (
	StatusJoined = "joined"
)

// JoinRequest is the only client -> server frame. Frames missing platform
// or channel are ignored; the connection stays open.
type JoinRequest struct {
	Action   string `json:"action"`
	Platform string `json:"platform"`
	Channel  string `json:"channel"`
}

// JoinAck confirms a join. It is sent as soon as membership is recorded,
// before upstream provisioning necessarily completes.
type JoinAck struct {
	Status string `json:"status"`
	Room   string `json:"room"`
}

func NewJoinAck(key RoomKey) *JoinAck {
	return &JoinAck{Status: StatusJoined, Room: key.String()}
}
