package waitlist

// User-facing texts for the submission outcomes.
const (
	ConfirmationMessage   = "You're on the list! We'll let you know as soon as Gatherly opens up."
	DuplicateEmailMessage = "This email is already registered on the waitlist."
	GenericFailureMessage = "Something went wrong while joining the waitlist. Please try again."
	UnavailableMessage    = "The waitlist is temporarily unavailable. Please try again later."
)

const (
	StateNameIdle    = "idle"
	StateNameLoading = "loading"
	StateNameSuccess = "success"
	StateNameError   = "error"
)

// State is the closed set of submission states: Idle, Loading, Success and
// Failed. Only Failed carries a message.
type State interface {
	StateName() string
	isState()
}

type Idle struct{}

type Loading struct{}

type Success struct{}

// FailureReason tells duplicate registrations apart from other failures.
type FailureReason int

const (
	FailureBackend FailureReason = iota
	FailureDuplicate
	FailureTransport
	FailureUnavailable
)

type Failed struct {
	Reason  FailureReason
	Message string
}

func (Idle) StateName() string    { return StateNameIdle }
func (Loading) StateName() string { return StateNameLoading }
func (Success) StateName() string { return StateNameSuccess }
func (Failed) StateName() string  { return StateNameError }

func (Idle) isState()    {}
func (Loading) isState() {}
func (Success) isState() {}
func (Failed) isState()  {}

// MessageOf returns the message carried by s, or "" for states without one.
func MessageOf(s State) string {
	if failed, ok := s.(Failed); ok {
		return failed.Message
	}
	return ""
}
