package guard

// TrackSelectedName is the registered name of TrackSelectedGuard.
const TrackSelectedName = "track_selected"

// TrackSelectedGuard requires a track name for play and a current track for next.
type TrackSelectedGuard struct{}

func (g *TrackSelectedGuard) Name() string {
	return TrackSelectedName
}

func (g *TrackSelectedGuard) Description() string {
	return "Checks that a track is named or selected"
}

func (g *TrackSelectedGuard) ReturnCodes() []string {
	return []string{"no_track"}
}

func (g *TrackSelectedGuard) AppliesTo(cmd Command) bool {
	return cmd == CommandPlay || cmd == CommandNext
}

func (g *TrackSelectedGuard) Check(req Request, s Subject) Result {
	name := req.Track
	if req.Command == CommandNext {
		name = s.Current
	}
	if name == "" {
		return Reject("no_track")
	}
	return Accept()
}

func init() {
	Register(TrackSelectedName, func() Guard {
		return &TrackSelectedGuard{}
	})
}
