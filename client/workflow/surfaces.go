package workflow

// Severity grades transient notifications.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Notifier is the transient notification surface. Implementations must not
// block; every failure message a controller produces goes through here.
type Notifier interface {
	Notify(level Severity, message string)
}

// Confirmer yields the user's decision for destructive actions. Mutations
// gated on it are only sent after Confirm returns true.
type Confirmer interface {
	Confirm(prompt string) bool
}

// NopNotifier discards notifications. Useful as a default.
type NopNotifier struct{}

func (NopNotifier) Notify(Severity, string) {}
