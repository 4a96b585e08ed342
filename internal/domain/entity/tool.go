package entity

type ToolName string

const (
	ToolInferIntent       ToolName = "infer_intent"
	ToolPlanNextStep      ToolName = "plan_next_step"
	ToolSearchGoogle      ToolName = "search_google"
	ToolGetScreenshot     ToolName = "get_website_screenshot"
	ToolCheckMaliciousURL ToolName = "check_malicious_url"
	ToolSubmitReport      ToolName = "submit_report_for_review"
)

// ToolDefinition is the schema exposed to the model provider. It is part of
// the function-calling contract and must stay stable once registered.
type ToolDefinition struct {
	Name        ToolName
	Description string
	Parameters  map[string]interface{}
}
