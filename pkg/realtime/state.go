package realtime

// ConnState is the connectivity of the realtime socket.
type ConnState int32

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

// String returns the string representation of the state.
func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}
