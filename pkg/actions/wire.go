package actions

import (
	"encoding/json"
	"fmt"
)

// DecodeParams turns a raw params object into the concrete type for the
// given kind. A nil or empty raw value decodes as an all-zero record so
// legacy rows saved without params still load (and then fail validation
// with a field name instead of a decode error). Optional fields with
// documented defaults are filled here, at the boundary, so the rest of
// the system only ever sees normalized values.
func DecodeParams(kind Kind, raw json.RawMessage) (Params, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	switch kind {
	case KindChangeStage:
		var p ChangeStageParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindAssignUser:
		var p AssignUserParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		if p.ApplyTo == "" {
			p.ApplyTo = "deal"
		}
		return p, nil
	case KindCreateTask:
		var p CreateTaskParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindRunSalesbot:
		var p RunSalesbotParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindAddDealTags:
		var p AddDealTagsParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindAddContactTags:
		var p AddContactTagsParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindAddDealNote:
		var p AddDealNoteParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindAddContactNote:
		var p AddContactNoteParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindSendMessage:
		var p SendMessageParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindSendEmail:
		var p SendEmailParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindSendFiles:
		var p SendFilesParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindSendWebhook:
		var p SendWebhookParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		if p.Method == "" {
			p.Method = "POST"
		}
		return p, nil
	case KindSendKBArticle:
		var p SendKBArticleParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		if p.Channel == "" {
			p.Channel = "chat"
		}
		return p, nil
	}

	return nil, fmt.Errorf("unknown action kind %q", kind)
}

// TriggerAction is the wire shape of one trigger action: {action, params}.
// An empty kind marks an unfilled editor slot; save paths drop those.
type TriggerAction struct {
	Kind   Kind
	Params Params
}

type triggerActionJSON struct {
	Action Kind            `json:"action"`
	Params json.RawMessage `json:"params"`
}

func (a *TriggerAction) UnmarshalJSON(data []byte) error {
	var raw triggerActionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Kind = raw.Action
	a.Params = nil
	if raw.Action == "" {
		return nil
	}
	params, err := DecodeParams(raw.Action, raw.Params)
	if err != nil {
		return err
	}
	a.Params = params
	return nil
}

func (a TriggerAction) MarshalJSON() ([]byte, error) {
	params := json.RawMessage("{}")
	if a.Params != nil {
		encoded, err := json.Marshal(a.Params)
		if err != nil {
			return nil, err
		}
		params = encoded
	}
	return json.Marshal(triggerActionJSON{Action: a.Kind, Params: params})
}

// StepAction is the wire shape of one chain-step action:
// {actionType, instruction, params}. Instruction carries free-form
// guidance for the agent and travels untouched.
type StepAction struct {
	Kind        Kind
	Instruction string
	Params      Params
}

type stepActionJSON struct {
	ActionType  Kind            `json:"actionType"`
	Instruction string          `json:"instruction"`
	Params      json.RawMessage `json:"params"`
}

func (a *StepAction) UnmarshalJSON(data []byte) error {
	var raw stepActionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Kind = raw.ActionType
	a.Instruction = raw.Instruction
	a.Params = nil
	if raw.ActionType == "" {
		return nil
	}
	params, err := DecodeParams(raw.ActionType, raw.Params)
	if err != nil {
		return err
	}
	a.Params = params
	return nil
}

func (a StepAction) MarshalJSON() ([]byte, error) {
	params := json.RawMessage("{}")
	if a.Params != nil {
		encoded, err := json.Marshal(a.Params)
		if err != nil {
			return nil, err
		}
		params = encoded
	}
	return json.Marshal(stepActionJSON{ActionType: a.Kind, Instruction: a.Instruction, Params: params})
}

// ActionError wraps a validation failure with the position of the
// offending action so the user can be pointed at it.
type ActionError struct {
	Index int
	Err   error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d: %v", e.Index+1, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// PrepareTriggerActions drops empty slots, then validates every
// remaining action. The first failure aborts: nothing is meant to be
// saved partially.
func PrepareTriggerActions(list []TriggerAction) ([]TriggerAction, error) {
	kept := make([]TriggerAction, 0, len(list))
	for _, a := range list {
		if a.Kind == "" {
			continue
		}
		kept = append(kept, a)
	}
	for i, a := range kept {
		if err := ValidateAction(a.Kind, a.Params); err != nil {
			return nil, &ActionError{Index: i, Err: err}
		}
	}
	return kept, nil
}

// PrepareStepActions is PrepareTriggerActions for chain-step actions.
func PrepareStepActions(list []StepAction) ([]StepAction, error) {
	kept := make([]StepAction, 0, len(list))
	for _, a := range list {
		if a.Kind == "" {
			continue
		}
		kept = append(kept, a)
	}
	for i, a := range kept {
		if err := ValidateAction(a.Kind, a.Params); err != nil {
			return nil, &ActionError{Index: i, Err: err}
		}
	}
	return kept, nil
}

// Direction of a manual list reorder.
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// Move swaps the element at index with its neighbour in the given
// direction. Moves past either end of the list are silent no-ops, as is
// an out-of-range index. Returns whether the list changed.
func Move[T any](list []T, index int, dir Direction) bool {
	if index < 0 || index >= len(list) {
		return false
	}
	switch dir {
	case MoveUp:
		if index == 0 {
			return false
		}
		list[index-1], list[index] = list[index], list[index-1]
		return true
	case MoveDown:
		if index == len(list)-1 {
			return false
		}
		list[index], list[index+1] = list[index+1], list[index]
		return true
	}
	return false
}
