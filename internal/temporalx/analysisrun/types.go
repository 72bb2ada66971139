package analysisrun

const (
	WorkflowName        = "channel-analysis"
	ActivityRunPipeline = "RunAnalysisPipeline"
)

// Input identifies one analysis run. AnalysisID keys the job registry entry;
// ChannelID is the canonical channel the pipeline walks.
type Input struct {
	AnalysisID string `json:"analysis_id"`
	ChannelID  string `json:"channel_id"`
}

type Output struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Processed int    `json:"processed"`
}
