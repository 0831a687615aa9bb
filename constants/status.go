package constants

// OutcomeStatus is the canonical label for how a quote request ended.
// Used for metrics labels and log fields.
type OutcomeStatus string

const (
	OutcomeOK           OutcomeStatus = "ok"
	OutcomeNoResults    OutcomeStatus = "no_results"    // valid, nothing matched
	OutcomeInputError   OutcomeStatus = "input_error"   // user-correctable
	OutcomeNetworkError OutcomeStatus = "network_error" // upstream call failed
	OutcomeParseError   OutcomeStatus = "parse_error"
	OutcomeFormatError  OutcomeStatus = "format_error"
	OutcomeValueError   OutcomeStatus = "value_error"
	OutcomeCanceled     OutcomeStatus = "canceled"
	OutcomeFailed       OutcomeStatus = "failed" // anything else
)
