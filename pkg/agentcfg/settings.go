package agentcfg

// PipelineSettings controls where in the CRM an agent is allowed to
// respond: which pipelines are on, which stages are selected, and the
// per-stage extras.
type PipelineSettings struct {
	Pipelines []PipelineConfig `json:"pipelines"`
}

type PipelineConfig struct {
	PipelineID int64         `json:"pipelineId"`
	Enabled    bool          `json:"enabled"`
	Stages     []StageConfig `json:"stages"`
}

type StageConfig struct {
	StageID      int64   `json:"stageId"`
	Selected     bool    `json:"selected"`
	Instructions string  `json:"instructions"`
	ArticleIDs   []int64 `json:"articleIds,omitempty"` // attached KB articles
}

// ChannelSettings selects the messaging channels the agent answers on.
type ChannelSettings struct {
	AllChannels bool    `json:"allChannels"`
	ChannelIDs  []int64 `json:"channelIds"`
}

// KBSettings gates the agent's knowledge-base access and its behaviour
// when no answer is found there.
type KBSettings struct {
	CategoryIDs          []int64 `json:"categoryIds"`
	CreateTaskIfNoAnswer bool    `json:"createTaskIfNoAnswer"`
	FallbackMessage      string  `json:"fallbackMessage"`
	AttachDocuments      bool    `json:"attachDocuments"`
}

// AdvancedSettings is the memory/response tuning saved through the
// dedicated advanced-settings endpoint.
type AdvancedSettings struct {
	MemoryDepth       int     `json:"memoryDepth"`
	Temperature       float64 `json:"temperature"`
	MaxResponseTokens int     `json:"maxResponseTokens"`
	ResponseDelaySec  int     `json:"responseDelaySec"`
	SplitLongReplies  bool    `json:"splitLongReplies"`
}
