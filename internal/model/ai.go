package model

type AIAction string

const (
	AIActionSummary AIAction = "summary"
	AIActionGrammar AIAction = "grammar"
)

type GenerateRequest struct {
	Text   string   `json:"text"`
	Action AIAction `json:"action"`
}
