package prompts

import (
	_ "embed"
)

//go:embed system.txt
var AgentSystemPrompt string

//go:embed summary.txt
var SummaryPrompt string

//go:embed review.txt
var ReviewPrompt string

//go:embed translation.txt
var TranslationPrompt string

//go:embed needs_checking.txt
var NeedsCheckingPrompt string

//go:embed sensitivity.txt
var SensitivityPrompt string

//go:embed redaction.txt
var RedactionPrompt string
