package types

// OutcomeKind tags a CompileOutcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	}
	return "unknown"
}

// Outcome is the per-unit compile result: translated text or an ordered,
// non-empty diagnostic list. The zero value is neither and reports Kind 0.
type Outcome struct {
	kind        OutcomeKind
	text        string
	diagnostics []string
}

// Success wraps translated target text.
func Success(text string) Outcome {
	return Outcome{kind: OutcomeSuccess, text: text}
}

// Failure wraps diagnostics. An empty list is replaced by a single generic
// diagnostic so a Failure is never silent.
func Failure(diagnostics ...string) Outcome {
	if len(diagnostics) == 0 {
		diagnostics = []string{"compilation failed"}
	}
	return Outcome{kind: OutcomeFailure, diagnostics: append([]string(nil), diagnostics...)}
}

func (o Outcome) Kind() OutcomeKind { return o.kind }
func (o Outcome) OK() bool          { return o.kind == OutcomeSuccess }

// Text returns the translated text; empty for failures.
func (o Outcome) Text() string { return o.text }

// Diagnostics returns a copy of the diagnostic lines; nil for successes.
func (o Outcome) Diagnostics() []string {
	if o.kind != OutcomeFailure {
		return nil
	}
	return append([]string(nil), o.diagnostics...)
}
