package flow

// State is a step of a redemption run
type State int

const (
	StateIdle State = iota
	StateListenerStarting
	StateWaitingForRedirect
	StateCodeCaptured
	StateExchangingToken
	StateLoggingIntoBackend
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListenerStarting:
		return "listener_starting"
	case StateWaitingForRedirect:
		return "waiting_for_redirect"
	case StateCodeCaptured:
		return "code_captured"
	case StateExchangingToken:
		return "exchanging_token"
	case StateLoggingIntoBackend:
		return "logging_into_backend"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer is told about every state a run enters. detail carries the
// listener address, the authorize URL or the failure, depending on the state.
type Observer interface {
	OnState(state State, detail string)
	// OnBrowserError reports that the authorize page could not be opened
	OnBrowserError(url string, err error)
}

type nopObserver struct{}

func (nopObserver) OnState(State, string)        {}
func (nopObserver) OnBrowserError(string, error) {}
