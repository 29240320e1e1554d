// Package biz implements the query routing and answer pipeline.
package biz

// Mode is the execution path chosen for a question.
type Mode string

const (
	// ModeRAG answers from retrieved regulation excerpts.
	ModeRAG Mode = "rag"
	// ModeChat answers without document access.
	ModeChat Mode = "chat"
	// ModeUnsafe refuses with the fixed safety message.
	ModeUnsafe Mode = "unsafe"
	// ModeOutOfScope refuses with the fixed scope message.
	ModeOutOfScope Mode = "out_of_scope"
	// ModeGuardrail returns the fixed fallback when retrieval evidence is
	// insufficient.
	ModeGuardrail Mode = "guardrail"
)

// Labels produced by the classifier.
const (
	LabelNeedRAG    = "NEED_RAG"
	LabelNoRAG      = "NO_RAG"
	LabelOutOfScope = "OUT_OF_SCOPE"
	LabelUnsafe     = "UNSAFE"
)

// Labels assigned by the orchestrator when guardrails trigger.
const (
	LabelNoContext     = "NO_CONTEXT"
	LabelLowConfidence = "LOW_CONFIDENCE"
	LabelForceNoAnswer = "FORCE_NO_ANSWER"
)

// Fixed user-visible responses. These are returned verbatim, never
// model-generated, so blocked paths stay reproducible.
const (
	UnsafeResponse     = "Η ερώτηση δεν μπορεί να απαντηθεί γιατί παραβιάζει τους κανόνες ασφαλείας."
	OutOfScopeResponse = "Η ερώτηση δεν σχετίζεται με τον στρατιωτικό κανονισμό του συστήματος."
	NoContextResponse  = "Δεν βρέθηκαν σχετικά έγγραφα. Παρακαλώ διευκρίνισε ή άλλαξε την ερώτηση."
)

// QueryPlan is the routing decision for one question. A plan is created once
// by PlanQuestion and consumed by FulfillPlan or StreamPlan without mutation.
// CtxTexts, Scores and Metas are parallel lists and are empty together
// whenever Mode != ModeRAG.
type QueryPlan struct {
	Question string
	Mode     Mode
	Label    string
	CtxTexts []string
	Scores   []float64
	Metas    []map[string]any

	// Message, when set, is returned verbatim at fulfillment.
	Message string
}

// QueryOutcome is the fulfilled result of a plan.
type QueryOutcome struct {
	Answer   string           `json:"answer"`
	CtxTexts []string         `json:"ctx_texts"`
	Scores   []float64        `json:"scores"`
	Metas    []map[string]any `json:"metas"`
	Mode     Mode             `json:"mode"`
	Label    string           `json:"label"`
}
