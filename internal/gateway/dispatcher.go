package gateway

// Dispatcher is the interface used by services to push events to connected
// WebSocket clients. The concrete Manager implements this interface.
type Dispatcher interface {
	DispatchToUser(userID int64, event string, data any)
	DispatchToUsers(userIDs []int64, event string, data any)
	DisconnectUser(userID int64)
	DisconnectSession(sessionID string)
}

// Nop discards every event. Used where no gateway is running.
type Nop struct{}

func (Nop) DispatchToUser(int64, string, any)    {}
func (Nop) DispatchToUsers([]int64, string, any) {}
func (Nop) DisconnectUser(int64)                 {}
func (Nop) DisconnectSession(string)             {}
