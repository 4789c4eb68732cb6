package auth

// PublicRoute is where unauthenticated users are sent
const PublicRoute = "/"

// Action is what the guard tells a protected screen to do
type Action int

const (
	// Wait shows a loading placeholder until initialization finishes
	Wait Action = iota
	// Render shows the protected content
	Render
	// Redirect sends the user to Decision.To
	Redirect
)

func (a Action) String() string {
	switch a {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Guard
type Decision struct {
	Action Action
	To     string
}

// Guard gates protected content on the session state. It never redirects
// while the stored token is still being checked.
func Guard(state State) Decision {
	switch state {
	case StateAuthenticated:
		return Decision{Action: Render}
	case StateUnauthenticated:
		return Decision{Action: Redirect, To: PublicRoute}
	default:
		return Decision{Action: Wait}
	}
}
