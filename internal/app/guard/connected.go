package guard

// ConnectedName is the registered name of ConnectedGuard.
const ConnectedName = "connected"

// ConnectedGuard rejects server requests while the transport is down.
type ConnectedGuard struct{}

func (g *ConnectedGuard) Name() string {
	return ConnectedName
}

func (g *ConnectedGuard) Description() string {
	return "Checks that the transport is open"
}

func (g *ConnectedGuard) ReturnCodes() []string {
	return []string{"not_connected"}
}

func (g *ConnectedGuard) AppliesTo(cmd Command) bool {
	// Pause and resume act on local media and stay available offline
	return cmd == CommandPlay || cmd == CommandNext
}

func (g *ConnectedGuard) Check(req Request, s Subject) Result {
	if s.Session == nil || !s.Session.IsConnected() {
		return Reject("not_connected")
	}
	return Accept()
}

func init() {
	Register(ConnectedName, func() Guard {
		return &ConnectedGuard{}
	})
}
