// Package outcome defines the result of a synchronization attempt.
package outcome

import "fmt"

// Kind identifies which of the three outcome variants was produced.
type Kind int

const (
	// RequiresFullDownload means local state is absent or corrupt, or the
	// patch gap is too large to apply incrementally.
	RequiresFullDownload Kind = iota
	// Skipped means no action was necessary or the action could not be
	// completed. Local tag state is never advanced on failure paths.
	Skipped
	// Success means files and the persisted tag reflect the new revision.
	Success
)

func (k Kind) String() string {
	switch k {
	case RequiresFullDownload:
		return "requires-full-download"
	case Skipped:
		return "skipped"
	case Success:
		return "success"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the tagged result of a sync operation. Callers branch on Kind;
// Message is for display only.
type Outcome struct {
	Kind    Kind
	Message string
}

// FullDownload returns a RequiresFullDownload outcome.
func FullDownload() Outcome {
	return Outcome{Kind: RequiresFullDownload, Message: "a full download is required"}
}

// Skip returns a Skipped outcome carrying reason.
func Skip(reason string) Outcome {
	return Outcome{Kind: Skipped, Message: reason}
}

// Skipf is Skip with formatting.
func Skipf(format string, args ...any) Outcome {
	return Skip(fmt.Sprintf(format, args...))
}

// Succeed returns a Success outcome carrying message.
func Succeed(message string) Outcome {
	return Outcome{Kind: Success, Message: message}
}

// IsSuccess reports whether o is a Success.
func (o Outcome) IsSuccess() bool { return o.Kind == Success }

// NeedsFullDownload reports whether o is RequiresFullDownload.
func (o Outcome) NeedsFullDownload() bool { return o.Kind == RequiresFullDownload }

func (o Outcome) String() string {
	if o.Message == "" {
		return o.Kind.String()
	}
	return o.Kind.String() + ": " + o.Message
}
