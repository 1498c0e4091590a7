package agentcfg

import (
	"fmt"
	"strings"
)

// UpdateRule is one conditional field-update instruction. Rules apply
// in list order; reordering is an explicit move, never a re-sort.
type UpdateRule struct {
	ID        string `json:"id"`
	FieldID   int64  `json:"fieldId"`
	Condition string `json:"condition"`
	Overwrite bool   `json:"overwrite"`
}

// CRMData is the agent's CRM field configuration: which fields the
// agent may read, and the ordered update-rule lists per entity type.
type CRMData struct {
	DealFieldIDs    []int64      `json:"dealFieldIds"`
	ContactFieldIDs []int64      `json:"contactFieldIds"`
	DealRules       []UpdateRule `json:"dealRules"`
	ContactRules    []UpdateRule `json:"contactRules"`
}

// DecodeCRMData reads a stored crm_data blob, tolerating the legacy
// double-encoded form. A broken or absent blob yields empty CRMData.
func DecodeCRMData(v any) CRMData {
	var data CRMData
	_ = DecodeBlob(v, &data)
	return data
}

// ValidateRules requires every rule to name a target field and carry a
// non-blank condition. Trigger and chain actions have always been
// validated before save; update rules get the same treatment.
func ValidateRules(listName string, rules []UpdateRule) error {
	for i, r := range rules {
		if r.FieldID == 0 {
			return fmt.Errorf("%s rule %d: field is not selected", listName, i+1)
		}
		if strings.TrimSpace(r.Condition) == "" {
			return fmt.Errorf("%s rule %d: condition is empty", listName, i+1)
		}
	}
	return nil
}

// Validate checks both rule lists of the CRM data document.
func (d CRMData) Validate() error {
	if err := ValidateRules("deal", d.DealRules); err != nil {
		return err
	}
	return ValidateRules("contact", d.ContactRules)
}

// MoveRule swaps the rule at index with its neighbour. Moving the first
// rule up or the last rule down changes nothing. Returns whether the
// list changed.
func MoveRule(rules []UpdateRule, index int, up bool) bool {
	if index < 0 || index >= len(rules) {
		return false
	}
	if up {
		if index == 0 {
			return false
		}
		rules[index-1], rules[index] = rules[index], rules[index-1]
		return true
	}
	if index == len(rules)-1 {
		return false
	}
	rules[index], rules[index+1] = rules[index+1], rules[index]
	return true
}
