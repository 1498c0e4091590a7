package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/worldwideservice/agent-admin/pkg/actions"
	"github.com/worldwideservice/agent-admin/pkg/schedule"

	"github.com/google/uuid"
)

// ErrValidation wraps every local draft validation failure so callers
// can tell "fix your input" apart from transport errors. No request is
// issued when validation fails; the draft is left untouched for the
// user to correct.
var ErrValidation = errors.New("validation failed")

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// DraftAction is one editor slot. The ID is a client temp id used only
// for list edits; the server never sees it and its response ids win.
type DraftAction struct {
	ID     string
	Kind   actions.Kind
	Params actions.Params
}

// TriggerDraft is the in-memory state of the trigger editor.
type TriggerDraft struct {
	TriggerID     uint // zero for a new trigger
	Name          string
	Condition     string
	IsActive      bool
	Actions       []DraftAction
	CancelMessage string
	RunLimit      *int
}

// NewTriggerDraft starts an empty draft with one unfilled action slot.
func NewTriggerDraft() *TriggerDraft {
	return &TriggerDraft{
		IsActive: true,
		Actions:  []DraftAction{{ID: uuid.NewString()}},
	}
}

// LoadTrigger hydrates a draft from a persisted trigger. Actions saved
// by older versions without params come back as zero-value params
// records, ready for the editor.
func LoadTrigger(t Trigger) *TriggerDraft {
	draft := &TriggerDraft{
		TriggerID:     t.ID,
		Name:          t.Name,
		Condition:     t.Condition,
		IsActive:      t.IsActive,
		CancelMessage: t.CancelMessage,
		RunLimit:      t.RunLimit,
	}
	for _, a := range t.Actions {
		params := a.Params
		if params == nil && a.Kind != "" {
			params, _ = actions.DecodeParams(a.Kind, nil)
		}
		draft.Actions = append(draft.Actions, DraftAction{ID: uuid.NewString(), Kind: a.Kind, Params: params})
	}
	if len(draft.Actions) == 0 {
		draft.Actions = []DraftAction{{ID: uuid.NewString()}}
	}
	return draft
}

// AddAction appends an empty slot and returns its temp id.
func (d *TriggerDraft) AddAction() string {
	id := uuid.NewString()
	d.Actions = append(d.Actions, DraftAction{ID: id})
	return id
}

// RemoveAction drops the slot with the given temp id, if present.
func (d *TriggerDraft) RemoveAction(id string) {
	for i, a := range d.Actions {
		if a.ID == id {
			d.Actions = append(d.Actions[:i], d.Actions[i+1:]...)
			return
		}
	}
}

// MoveAction swaps the slot at index with its neighbour. Boundary moves
// are silent no-ops.
func (d *TriggerDraft) MoveAction(index int, dir actions.Direction) {
	actions.Move(d.Actions, index, dir)
}

func (d *TriggerDraft) wireActions() ([]actions.TriggerAction, error) {
	list := make([]actions.TriggerAction, 0, len(d.Actions))
	for _, a := range d.Actions {
		list = append(list, actions.TriggerAction{Kind: a.Kind, Params: a.Params})
	}
	return actions.PrepareTriggerActions(list)
}

type triggerRequest struct {
	Name          string                  `json:"name"`
	Condition     string                  `json:"condition"`
	IsActive      bool                    `json:"is_active"`
	Actions       []actions.TriggerAction `json:"actions"`
	CancelMessage string                  `json:"cancel_message"`
	RunLimit      *int                    `json:"run_limit"`
}

// validate runs the full local check and builds the request body. The
// draft itself is never mutated here beyond trimming its name and
// condition, so a failed save leaves everything for the user to fix.
func (d *TriggerDraft) validate() (*triggerRequest, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Condition = strings.TrimSpace(d.Condition)

	if d.Name == "" {
		return nil, validationErr("trigger name is required")
	}
	if d.Condition == "" {
		return nil, validationErr("trigger condition is required")
	}

	prepared, err := d.wireActions()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if len(prepared) == 0 {
		return nil, validationErr("at least one action is required")
	}

	return &triggerRequest{
		Name:          d.Name,
		Condition:     d.Condition,
		IsActive:      d.IsActive,
		Actions:       prepared,
		CancelMessage: d.CancelMessage,
		RunLimit:      d.RunLimit,
	}, nil
}

// SaveTrigger validates the draft and then creates or updates the
// trigger. Validation failures return before any request is issued.
// The returned trigger carries the server-assigned ids; the draft's
// temp ids are discarded.
func (c *Client) SaveTrigger(ctx context.Context, agentID uint, draft *TriggerDraft) (*Trigger, error) {
	req, err := draft.validate()
	if err != nil {
		return nil, err
	}

	var saved Trigger
	if draft.TriggerID == 0 {
		err = c.do(ctx, http.MethodPost, fmt.Sprintf("/api/agents/%d/triggers", agentID), req, &saved)
	} else {
		err = c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/agents/%d/triggers/%d", agentID, draft.TriggerID), req, &saved)
	}
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// DraftStep is one chain step being edited.
type DraftStep struct {
	ID         string // client temp id
	DelayValue int
	DelayUnit  string
	Actions    []DraftStepAction
}

type DraftStepAction struct {
	ID          string
	Kind        actions.Kind
	Instruction string
	Params      actions.Params
}

// ChainDraft is the in-memory state of the chain editor.
type ChainDraft struct {
	ChainID          uint
	Name             string
	IsActive         bool
	ConditionType    string
	ConditionStages  []int64
	ConditionExclude string
	Steps            []DraftStep
	Schedule         schedule.Schedule
	RunLimit         *int
}

func newDraftStep() DraftStep {
	return DraftStep{
		ID:         uuid.NewString(),
		DelayValue: 20,
		DelayUnit:  "minutes",
		Actions:    []DraftStepAction{{ID: uuid.NewString()}},
	}
}

// NewChainDraft starts a catch-all chain with one default step and the
// default weekly schedule.
func NewChainDraft() *ChainDraft {
	return &ChainDraft{
		IsActive:      true,
		ConditionType: "all",
		Steps:         []DraftStep{newDraftStep()},
		Schedule:      schedule.Default(),
	}
}

// LoadChain hydrates a draft from a persisted chain.
func LoadChain(ch Chain) *ChainDraft {
	draft := &ChainDraft{
		ChainID:          ch.ID,
		Name:             ch.Name,
		IsActive:         ch.IsActive,
		ConditionType:    ch.ConditionType,
		ConditionStages:  ch.ConditionStages,
		ConditionExclude: ch.ConditionExclude,
		Schedule:         ch.Schedule,
		RunLimit:         ch.RunLimit,
	}
	if draft.Schedule == nil {
		draft.Schedule = schedule.Default()
	}
	for _, s := range ch.Steps {
		step := DraftStep{ID: uuid.NewString(), DelayValue: s.DelayValue, DelayUnit: s.DelayUnit}
		for _, a := range s.Actions {
			params := a.Params
			if params == nil && a.Kind != "" {
				params, _ = actions.DecodeParams(a.Kind, nil)
			}
			step.Actions = append(step.Actions, DraftStepAction{
				ID:          uuid.NewString(),
				Kind:        a.Kind,
				Instruction: a.Instruction,
				Params:      params,
			})
		}
		if len(step.Actions) == 0 {
			step.Actions = []DraftStepAction{{ID: uuid.NewString()}}
		}
		draft.Steps = append(draft.Steps, step)
	}
	if len(draft.Steps) == 0 {
		draft.Steps = []DraftStep{newDraftStep()}
	}
	return draft
}

// AddStep appends a default step and returns its temp id.
func (d *ChainDraft) AddStep() string {
	step := newDraftStep()
	d.Steps = append(d.Steps, step)
	return step.ID
}

// RemoveStep drops the step with the given temp id, if present.
func (d *ChainDraft) RemoveStep(id string) {
	for i, s := range d.Steps {
		if s.ID == id {
			d.Steps = append(d.Steps[:i], d.Steps[i+1:]...)
			return
		}
	}
}

// MoveStep swaps the step at index with its neighbour; no-op past the
// list edges.
func (d *ChainDraft) MoveStep(index int, dir actions.Direction) {
	actions.Move(d.Steps, index, dir)
}

// AddAction appends an empty action slot to the given step and returns
// its temp id.
func (d *ChainDraft) AddAction(stepID string) string {
	for i := range d.Steps {
		if d.Steps[i].ID == stepID {
			id := uuid.NewString()
			d.Steps[i].Actions = append(d.Steps[i].Actions, DraftStepAction{ID: id})
			return id
		}
	}
	return ""
}

// RemoveAction drops one action slot from one step.
func (d *ChainDraft) RemoveAction(stepID, actionID string) {
	for i := range d.Steps {
		if d.Steps[i].ID != stepID {
			continue
		}
		for j, a := range d.Steps[i].Actions {
			if a.ID == actionID {
				d.Steps[i].Actions = append(d.Steps[i].Actions[:j], d.Steps[i].Actions[j+1:]...)
				return
			}
		}
		return
	}
}

// ToggleWorkingDay flips one day of the draft schedule.
func (d *ChainDraft) ToggleWorkingDay(day string) {
	d.Schedule.Toggle(day)
}

type stepRequest struct {
	DelayValue int                  `json:"delayValue"`
	DelayUnit  string               `json:"delayUnit"`
	Actions    []actions.StepAction `json:"actions"`
}

type chainRequest struct {
	Name             string            `json:"name"`
	IsActive         bool              `json:"is_active"`
	ConditionType    string            `json:"conditionType"`
	ConditionStages  []int64           `json:"conditionStages"`
	ConditionExclude string            `json:"conditionExclude"`
	Steps            []stepRequest     `json:"steps"`
	Schedule         schedule.Schedule `json:"schedule"`
	RunLimit         *int              `json:"run_limit"`
}

// validate builds the flat request shape from the nested draft. Delay
// values and units go out exactly as entered: unit interpretation is
// the scheduler's job.
func (d *ChainDraft) validate() (*chainRequest, error) {
	d.Name = strings.TrimSpace(d.Name)

	if d.Name == "" {
		return nil, validationErr("chain name is required")
	}
	if d.ConditionType == "specific" && len(d.ConditionStages) == 0 {
		return nil, validationErr("at least one stage is required for a specific-stage condition")
	}
	if err := d.Schedule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if len(d.Steps) == 0 {
		return nil, validationErr("at least one step is required")
	}

	steps := make([]stepRequest, 0, len(d.Steps))
	for i, s := range d.Steps {
		list := make([]actions.StepAction, 0, len(s.Actions))
		for _, a := range s.Actions {
			list = append(list, actions.StepAction{Kind: a.Kind, Instruction: a.Instruction, Params: a.Params})
		}
		prepared, err := actions.PrepareStepActions(list)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %s", ErrValidation, i+1, err.Error())
		}
		if len(prepared) == 0 {
			return nil, validationErr("step %d needs at least one action", i+1)
		}
		steps = append(steps, stepRequest{DelayValue: s.DelayValue, DelayUnit: s.DelayUnit, Actions: prepared})
	}

	return &chainRequest{
		Name:             d.Name,
		IsActive:         d.IsActive,
		ConditionType:    d.ConditionType,
		ConditionStages:  d.ConditionStages,
		ConditionExclude: d.ConditionExclude,
		Steps:            steps,
		Schedule:         d.Schedule,
		RunLimit:         d.RunLimit,
	}, nil
}

// SaveChain validates and persists the draft, then reloads the full
// chain list so the caller renders server-assigned ids and server-side
// normalization instead of local state.
func (c *Client) SaveChain(ctx context.Context, agentID uint, draft *ChainDraft) ([]Chain, error) {
	req, err := draft.validate()
	if err != nil {
		return nil, err
	}

	if draft.ChainID == 0 {
		err = c.do(ctx, http.MethodPost, fmt.Sprintf("/api/agents/%d/chains", agentID), req, nil)
	} else {
		err = c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/agents/%d/chains/%d", agentID, draft.ChainID), req, nil)
	}
	if err != nil {
		return nil, err
	}

	return c.ListChains(ctx, agentID)
}
