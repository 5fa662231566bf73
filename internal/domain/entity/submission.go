package entity

// SubmitMethod names the strategy that delivered a question to the page.
type SubmitMethod string

const (
	SubmitViaButton   SubmitMethod = "button"
	SubmitViaForm     SubmitMethod = "form"
	SubmitViaKeyboard SubmitMethod = "keyboard"
)

func (m SubmitMethod) String() string {
	return string(m)
}

// Verified reports whether the page observably accepted the submission.
// The keyboard path cannot tell, so it is optimistic.
func (m SubmitMethod) Verified() bool {
	return m == SubmitViaButton || m == SubmitViaForm
}

const ReasonInputNotFound = "input_not_found"

type SubmissionRequest struct {
	Question  string
	Selectors SelectorConfig
}

type SubmissionOutcome struct {
	OK     bool         `json:"ok"`
	Reason string       `json:"reason,omitempty"`
	Via    SubmitMethod `json:"via,omitempty"`
	Answer string       `json:"answer,omitempty"`
}

func InputNotFound() SubmissionOutcome {
	return SubmissionOutcome{OK: false, Reason: ReasonInputNotFound}
}
