package domain

// Outcome tags the terminal branch a request took through the pipeline.
// Exactly one outcome is assigned per request.
type Outcome string

const (
	// OutcomeEscalationTriggered means a trigger word routed the query
	// straight to a human before any retrieval happened.
	OutcomeEscalationTriggered Outcome = "escalation_triggered"

	// OutcomeWelcome means the welcome intent short-circuited the pipeline
	// with a canned reply.
	OutcomeWelcome Outcome = "welcome"

	// OutcomeNoDocs means retrieval returned nothing and the query escalated.
	OutcomeNoDocs Outcome = "no_docs_escalate"

	// OutcomeLowConfidence means retrieval quality was below the confidence
	// threshold and the query escalated.
	OutcomeLowConfidence Outcome = "low_confidence_escalate"

	// OutcomeAnswered means the generation service produced an answer.
	OutcomeAnswered Outcome = "answered"

	// OutcomeInputRejected means the query was empty or whitespace-only.
	OutcomeInputRejected Outcome = "input_rejected"

	// OutcomeSystemError means an unexpected failure was converted into an
	// escalation ticket and a generic apology.
	OutcomeSystemError Outcome = "system_error"
)
