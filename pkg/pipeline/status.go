package pipeline

import "fmt"

// StatusKind classifies the outcome of a stage application or a whole
// evaluation. Kinds are ordered by severity for worst-of aggregation;
// Pending ranks above Error so that an incomplete evaluation is always
// re-polled by the caller regardless of intermediate stage failures.
type StatusKind int

const (
	StatusSuccess StatusKind = iota
	StatusWarning
	StatusError
	StatusPending
)

func (k StatusKind) String() string {
	switch k {
	case StatusSuccess:
		return "success"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	case StatusPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Status is the outcome reported by a stage. A stage reporting an error
// still returns a (possibly partial) flow state; evaluation never aborts
// the chain.
type Status struct {
	Kind    StatusKind
	Message string
}

// Success returns the zero status.
func Success() Status { return Status{} }

// Warning returns a warning status with the given message.
func Warning(message string) Status { return Status{Kind: StatusWarning, Message: message} }

// Errorf returns an error status with a formatted message.
func Errorf(format string, args ...any) Status {
	return Status{Kind: StatusError, Message: fmt.Sprintf(format, args...)}
}

// Pending reports that a result is not available yet; the caller should
// re-evaluate once background work completes.
func Pending(message string) Status { return Status{Kind: StatusPending, Message: message} }

// Worse returns the more severe of the two statuses.
func (s Status) Worse(other Status) Status {
	if other.Kind > s.Kind {
		return other
	}

	return s
}

func (s Status) String() string {
	if s.Message == "" {
		return s.Kind.String()
	}

	return fmt.Sprintf("%s: %s", s.Kind, s.Message)
}
