package entity

import "time"

// SubmittedReport holds the arguments of the terminal
// submit_report_for_review call, taken verbatim from the model.
type SubmittedReport struct {
	Report          string   `json:"report"`
	Sources         []string `json:"sources"`
	IsControversial bool     `json:"isControversial"`
	IsVideo         bool     `json:"isVideo"`
	IsAccessBlocked bool     `json:"isAccessBlocked"`
}

// ReviewResult is the Review Gate's grading of a submitted report.
type ReviewResult struct {
	Feedback     string `json:"feedback"`
	PassedReview bool   `json:"passedReview"`
}

// CostEntry records the unit cost of one model or tool call.
type CostEntry struct {
	Source string  `json:"source"`
	Cost   float64 `json:"cost"`
}

// NoteVerdict is the final bilingual community note returned to the caller.
type NoteVerdict struct {
	RequestID       string      `json:"requestId"`
	Success         bool        `json:"success"`
	EN              string      `json:"en,omitempty"`
	CN              string      `json:"cn,omitempty"`
	Links           []string    `json:"links,omitempty"`
	IsControversial bool        `json:"isControversial"`
	IsVideo         bool        `json:"isVideo"`
	IsAccessBlocked bool        `json:"isAccessBlocked"`
	Report          string      `json:"report,omitempty"`
	ErrorMessage    string      `json:"errorMessage,omitempty"`
	AgentTrace      []Message   `json:"agentTrace,omitempty"`
	CostTrace       []CostEntry `json:"costTrace,omitempty"`
	TotalCost       float64     `json:"totalCost"`
	AgentTimeTaken  float64     `json:"agentTimeTaken"`
	TotalTimeTaken  float64     `json:"totalTimeTaken"`
}

// AgentCallRecord is the document persisted per generate-note invocation.
type AgentCallRecord struct {
	RequestID   string      `firestore:"requestId"`
	Success     bool        `firestore:"success"`
	EN          string      `firestore:"en,omitempty"`
	CN          string      `firestore:"cn,omitempty"`
	Links       []string    `firestore:"links,omitempty"`
	Report      string      `firestore:"report,omitempty"`
	Error       string      `firestore:"errorMessage,omitempty"`
	Text        string      `firestore:"text,omitempty"`
	ImageURL    string      `firestore:"imageUrl,omitempty"`
	Caption     string      `firestore:"caption,omitempty"`
	Provider    string      `firestore:"model"`
	Environment string      `firestore:"environment"`
	Timestamp   time.Time   `firestore:"timestamp"`
	AgentTrace  []Message   `firestore:"agentTrace,omitempty"`
	CostTrace   []CostEntry `firestore:"costTrace,omitempty"`
}
