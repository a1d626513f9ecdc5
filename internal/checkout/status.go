package checkout

type Status string

const (
	StatusIdle        Status = "IDLE"
	StatusSubmitting  Status = "SUBMITTING"
	StatusRedirecting Status = "REDIRECTING"
)

// IsTerminal reports whether the flow has handed control to the hosted page;
// navigation leaves the site from there.
func (s Status) IsTerminal() bool {
	return s == StatusRedirecting
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}
