package actions

import (
	"fmt"
)

// Kind identifies one automated action type. The set is closed: editors
// render exactly these variants and the backend rejects anything else.
type Kind string

const (
	KindChangeStage    Kind = "change_stage"
	KindAssignUser     Kind = "assign_user"
	KindCreateTask     Kind = "create_task"
	KindRunSalesbot    Kind = "run_salesbot"
	KindAddDealTags    Kind = "add_deal_tags"
	KindAddContactTags Kind = "add_contact_tags"
	KindAddDealNote    Kind = "add_deal_note"
	KindAddContactNote Kind = "add_contact_note"
	KindSendMessage    Kind = "send_message"
	KindSendEmail      Kind = "send_email"
	KindSendFiles      Kind = "send_files"
	KindSendWebhook    Kind = "send_webhook"
	KindSendKBArticle  Kind = "send_kb_article"
)

// Kinds lists every valid action kind in display order.
var Kinds = []Kind{
	KindChangeStage,
	KindAssignUser,
	KindCreateTask,
	KindRunSalesbot,
	KindAddDealTags,
	KindAddContactTags,
	KindAddDealNote,
	KindAddContactNote,
	KindSendMessage,
	KindSendEmail,
	KindSendFiles,
	KindSendWebhook,
	KindSendKBArticle,
}

func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Params is the kind-specific parameter record of an action. Exactly one
// concrete type exists per Kind.
type Params interface {
	Kind() Kind
	Validate() error
}

// MissingFieldError reports a required parameter absent from an action.
type MissingFieldError struct {
	Kind  Kind
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("action %q: missing required field %q", e.Kind, e.Field)
}

func missing(kind Kind, field string) error {
	return &MissingFieldError{Kind: kind, Field: field}
}

// ChangeStageParams moves the deal to another pipeline stage.
type ChangeStageParams struct {
	PipelineID int64 `json:"pipelineId,omitempty"`
	StageID    int64 `json:"stageId"`
}

func (ChangeStageParams) Kind() Kind { return KindChangeStage }

func (p ChangeStageParams) Validate() error {
	if p.StageID == 0 {
		return missing(KindChangeStage, "stageId")
	}
	return nil
}

// AssignUserParams assigns a responsible user to the deal or contact.
type AssignUserParams struct {
	UserID  int64  `json:"userId"`
	ApplyTo string `json:"applyTo,omitempty"` // deal | contact, defaults to deal
}

func (AssignUserParams) Kind() Kind { return KindAssignUser }

func (p AssignUserParams) Validate() error {
	if p.UserID == 0 {
		return missing(KindAssignUser, "userId")
	}
	return nil
}

// CreateTaskParams creates a CRM task for the responsible user.
type CreateTaskParams struct {
	TaskDescription string `json:"taskDescription"`
	DueInDays       int    `json:"dueInDays,omitempty"`
}

func (CreateTaskParams) Kind() Kind { return KindCreateTask }

func (p CreateTaskParams) Validate() error {
	if p.TaskDescription == "" {
		return missing(KindCreateTask, "taskDescription")
	}
	return nil
}

// RunSalesbotParams launches a Kommo salesbot on the conversation.
type RunSalesbotParams struct {
	SalesbotID int64 `json:"salesbotId"`
}

func (RunSalesbotParams) Kind() Kind { return KindRunSalesbot }

func (p RunSalesbotParams) Validate() error {
	if p.SalesbotID == 0 {
		return missing(KindRunSalesbot, "salesbotId")
	}
	return nil
}

// AddDealTagsParams appends tags to the deal.
type AddDealTagsParams struct {
	Tags []string `json:"tags"`
}

func (AddDealTagsParams) Kind() Kind { return KindAddDealTags }

func (p AddDealTagsParams) Validate() error {
	if len(p.Tags) == 0 {
		return missing(KindAddDealTags, "tags")
	}
	return nil
}

// AddContactTagsParams appends tags to the contact.
type AddContactTagsParams struct {
	Tags []string `json:"tags"`
}

func (AddContactTagsParams) Kind() Kind { return KindAddContactTags }

func (p AddContactTagsParams) Validate() error {
	if len(p.Tags) == 0 {
		return missing(KindAddContactTags, "tags")
	}
	return nil
}

// AddDealNoteParams attaches a text note to the deal.
type AddDealNoteParams struct {
	NoteText string `json:"noteText"`
}

func (AddDealNoteParams) Kind() Kind { return KindAddDealNote }

func (p AddDealNoteParams) Validate() error {
	if p.NoteText == "" {
		return missing(KindAddDealNote, "noteText")
	}
	return nil
}

// AddContactNoteParams attaches a text note to the contact.
type AddContactNoteParams struct {
	NoteText string `json:"noteText"`
}

func (AddContactNoteParams) Kind() Kind { return KindAddContactNote }

func (p AddContactNoteParams) Validate() error {
	if p.NoteText == "" {
		return missing(KindAddContactNote, "noteText")
	}
	return nil
}

// SendMessageParams sends a chat message to the lead.
type SendMessageParams struct {
	MessageText string `json:"messageText"`
}

func (SendMessageParams) Kind() Kind { return KindSendMessage }

func (p SendMessageParams) Validate() error {
	if p.MessageText == "" {
		return missing(KindSendMessage, "messageText")
	}
	return nil
}

// SendEmailParams instructs the agent to compose and send an email.
type SendEmailParams struct {
	EmailInstructions string   `json:"emailInstructions"`
	Attachments       []string `json:"attachments,omitempty"`
}

func (SendEmailParams) Kind() Kind { return KindSendEmail }

func (p SendEmailParams) Validate() error {
	if p.EmailInstructions == "" {
		return missing(KindSendEmail, "emailInstructions")
	}
	return nil
}

// SendFilesParams sends one or more stored files to the lead.
type SendFilesParams struct {
	FileURLs []string `json:"fileUrls"`
}

func (SendFilesParams) Kind() Kind { return KindSendFiles }

func (p SendFilesParams) Validate() error {
	if len(p.FileURLs) == 0 {
		return missing(KindSendFiles, "fileUrls")
	}
	return nil
}

// SendWebhookParams calls an external URL with an optional body.
type SendWebhookParams struct {
	WebhookURL string            `json:"webhookUrl"`
	Method     string            `json:"method,omitempty"` // defaults to POST
	Body       string            `json:"body,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
}

func (SendWebhookParams) Kind() Kind { return KindSendWebhook }

func (p SendWebhookParams) Validate() error {
	if p.WebhookURL == "" {
		return missing(KindSendWebhook, "webhookUrl")
	}
	return nil
}

// SendKBArticleParams sends a knowledge-base article to the lead.
type SendKBArticleParams struct {
	ArticleID int64  `json:"articleId"`
	Channel   string `json:"channel,omitempty"` // defaults to chat
}

func (SendKBArticleParams) Kind() Kind { return KindSendKBArticle }

func (p SendKBArticleParams) Validate() error {
	if p.ArticleID == 0 {
		return missing(KindSendKBArticle, "articleId")
	}
	return nil
}

// ValidateAction checks a (kind, params) pair the way editors must before
// any save request goes out. It is a pure predicate: no defaults are
// applied and nothing is mutated.
func ValidateAction(kind Kind, params Params) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown action kind %q", kind)
	}
	if params == nil {
		var err error
		params, err = DecodeParams(kind, nil)
		if err != nil {
			return err
		}
	}
	if params.Kind() != kind {
		return fmt.Errorf("action kind %q does not match params kind %q", kind, params.Kind())
	}
	return params.Validate()
}
