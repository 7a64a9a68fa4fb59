package domain

// ChannelSMS is the only delivery channel supported by the gateways.
const ChannelSMS = "sms"

// Provider verdict strings. Only StatusApproved means the code was accepted.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusExpired  = "expired"
)

// VerificationRequest is one code issuance. It only lives for the duration of
// the gateway call.
type VerificationRequest struct {
	Destination string
	Channel     string
}

// Verdict is the result of checking a submitted code.
type Verdict int

const (
	Denied Verdict = iota
	Approved
)

func (v Verdict) String() string {
	if v == Approved {
		return "approved"
	}
	return "denied"
}

// Outcome is what a gateway reports for a code check. Status keeps the raw
// provider string for display and logging.
type Outcome struct {
	Verdict Verdict
	Status  string
}

// Approved reports whether the provider accepted the code.
func (o Outcome) Approved() bool { return o.Verdict == Approved }

// OutcomeFromStatus maps a provider status to an Outcome. Anything other than
// the literal "approved", including "pending", is a denial.
func OutcomeFromStatus(status string) Outcome {
	if status == StatusApproved {
		return Outcome{Verdict: Approved, Status: status}
	}
	return Outcome{Verdict: Denied, Status: status}
}

// SessionState is the lifecycle of a two-factor session.
type SessionState int

const (
	StatePendingIssue SessionState = iota
	StateAwaitingCode
	StateApproved
	StateAbandoned
)

func (s SessionState) String() string {
	switch s {
	case StatePendingIssue:
		return "pending_issue"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateApproved:
		return "approved"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are accepted.
func (s SessionState) Terminal() bool {
	return s == StateApproved || s == StateAbandoned
}

// DestinationPolicy selects which phone number a login verifies against.
type DestinationPolicy string

const (
	// DestinationRecord verifies against the phone stored at registration.
	DestinationRecord DestinationPolicy = "record"

	// DestinationLogin verifies against the phone typed into the login form.
	// Anyone who knows the password can then choose the destination.
	DestinationLogin DestinationPolicy = "login"
)

// ParseDestinationPolicy returns the policy for s, defaulting to
// DestinationRecord for anything unrecognised.
func ParseDestinationPolicy(s string) DestinationPolicy {
	if DestinationPolicy(s) == DestinationLogin {
		return DestinationLogin
	}
	return DestinationRecord
}
