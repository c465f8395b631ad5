package guard

// AuthenticatedName is the registered name of AuthenticatedGuard.
const AuthenticatedName = "authenticated"

// AuthenticatedGuard rejects track requests before the server accepted credentials.
type AuthenticatedGuard struct{}

func (g *AuthenticatedGuard) Name() string {
	return AuthenticatedName
}

func (g *AuthenticatedGuard) Description() string {
	return "Checks that the session is authenticated"
}

func (g *AuthenticatedGuard) ReturnCodes() []string {
	return []string{"not_authenticated"}
}

func (g *AuthenticatedGuard) AppliesTo(cmd Command) bool {
	return cmd == CommandPlay || cmd == CommandNext
}

func (g *AuthenticatedGuard) Check(req Request, s Subject) Result {
	if s.Session == nil || !s.Session.IsAuthenticated() {
		return Reject("not_authenticated")
	}
	return Accept()
}

func init() {
	Register(AuthenticatedName, func() Guard {
		return &AuthenticatedGuard{}
	})
}
