package models

import (
	"time"
)

// Agent represents a configured AI responder bound to one CRM account.
// The settings columns hold JSON sub-documents; older rows may carry one
// extra layer of string-encoding, which the agentcfg package tolerates
// on read.
type Agent struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	Model            string    `gorm:"type:varchar(100)" json:"model"`
	Instructions     string    `gorm:"type:text" json:"instructions"`
	PipelineSettings string    `gorm:"type:text" json:"pipeline_settings"` // JSON
	ChannelSettings  string    `gorm:"type:text" json:"channel_settings"`  // JSON
	KBSettings       string    `gorm:"type:text" json:"kb_settings"`       // JSON
	CRMData          string    `gorm:"type:text" json:"crm_data"`          // JSON (field access + update rules)
	AdvancedSettings string    `gorm:"type:text" json:"advanced_settings"` // JSON (memory/response tuning)
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Agent) TableName() string {
	return "agents"
}

// Integration represents the link to one Kommo/amoCRM account.
type Integration struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BaseDomain   string    `gorm:"type:varchar(255);not null" json:"base_domain"`
	AccessToken  string    `gorm:"type:text" json:"access_token"`
	RefreshToken string    `gorm:"type:text" json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Integration) TableName() string {
	return "integrations"
}

// Trigger represents a condition-driven rule that fires a list of actions.
type Trigger struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AgentID       uint      `gorm:"index;not null" json:"agent_id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	Condition     string    `gorm:"type:text;not null" json:"condition"`
	Actions       string    `gorm:"type:text" json:"actions"` // JSON list of {action, params}
	CancelMessage string    `gorm:"type:text" json:"cancel_message"`
	RunLimit      *int      `json:"run_limit"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Trigger) TableName() string {
	return "triggers"
}

// Chain represents a multi-step delayed sequence gated by a stage
// condition and a weekly schedule.
type Chain struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	AgentID          uint        `gorm:"index;not null" json:"agent_id"`
	Name             string      `gorm:"type:varchar(255);not null" json:"name"`
	IsActive         bool        `gorm:"default:true" json:"is_active"`
	ConditionType    string      `gorm:"type:varchar(20);default:'all'" json:"condition_type"` // all | specific
	ConditionStages  string      `gorm:"type:text" json:"condition_stages"`                    // JSON list of stage ids
	ConditionExclude string      `gorm:"type:text" json:"condition_exclude"`
	Schedule         string      `gorm:"type:text" json:"schedule"` // JSON, 7 working days
	RunLimit         *int        `json:"run_limit"`
	Steps            []ChainStep `gorm:"foreignKey:ChainID;constraint:OnDelete:CASCADE;" json:"steps"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Chain) TableName() string {
	return "chains"
}

// ChainStep is one delayed step inside a chain.
type ChainStep struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChainID    uint      `gorm:"index;not null" json:"chain_id"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	DelayValue int       `gorm:"not null;default:20" json:"delay_value"`
	DelayUnit  string    `gorm:"type:varchar(20);default:'minutes'" json:"delay_unit"` // minutes | hours | days
	Actions    string    `gorm:"type:text" json:"actions"`                             // JSON list of {actionType, instruction, params}
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ChainStep) TableName() string {
	return "chain_steps"
}

// Document represents an uploaded knowledge file attached to an agent.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AgentID    uint      `gorm:"index;not null" json:"agent_id"`
	StorageKey string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"storage_key"`
	Filename   string    `gorm:"type:varchar(255)" json:"filename"`
	MimeType   string    `gorm:"type:varchar(100)" json:"mime_type"`
	FileSize   int64     `json:"file_size"`
	Enabled    bool      `gorm:"default:true" json:"enabled"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (Document) TableName() string {
	return "documents"
}

// KBCategory groups knowledge-base articles.
type KBCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (KBCategory) TableName() string {
	return "kb_categories"
}

// KBArticle is a knowledge-base content unit, attachable to pipeline
// stages and sendable via the send_kb_article action.
type KBArticle struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"index" json:"category_id"`
	Title      string    `gorm:"type:varchar(255);not null" json:"title"`
	Content    string    `gorm:"type:text" json:"content"`
	Published  bool      `gorm:"default:true" json:"published"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (KBArticle) TableName() string {
	return "kb_articles"
}

// AgentLog records the outcome of mutating admin operations.
type AgentLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AgentID      uint      `gorm:"index" json:"agent_id"`
	EntityType   string    `gorm:"type:varchar(50)" json:"entity_type"` // agent, trigger, chain, document
	EntityID     uint      `json:"entity_id"`
	Action       string    `gorm:"type:varchar(50)" json:"action"` // created, updated, deleted, toggled
	Success      bool      `json:"success"`
	ErrorMessage string    `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AgentLog) TableName() string {
	return "agent_logs"
}

// SystemSetting mirrors env configuration into the database.
type SystemSetting struct {
	Key   string `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}
