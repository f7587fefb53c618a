//
//  Copyright © Manetu Inc. All rights reserved.
//

package bridge

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/manetu/cedarbridge/pkg/types"
)

var policySequence atomic.Uint64

// Policy is an opaque container for a single policy's source text. The
// source is held verbatim; well-formedness is established by the engine
// (see Engine.CheckPolicies), not by this layer.
type Policy struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

// NewPolicy wraps source under a fresh id of the form policyN.
func NewPolicy(source string) (Policy, error) {
	return NewPolicyWithID(source, fmt.Sprintf("policy%d", policySequence.Add(1)-1))
}

// NewPolicyWithID wraps source under the caller's id.
func NewPolicyWithID(source, id string) (Policy, error) {
	if strings.TrimSpace(source) == "" {
		return Policy{}, errors.New("policy source must be non-empty")
	}
	if id == "" {
		return Policy{}, errors.New("policy id must be non-empty")
	}
	return Policy{ID: id, Source: source}, nil
}

// Template is a policy template: source text with ?principal/?resource
// slots, filled per link.
type Template = Policy

// NewTemplate wraps template source under a fresh id.
func NewTemplate(source string) (Template, error) {
	return NewPolicy(source)
}

// SlotID names a template slot.
type SlotID string

const (
	PrincipalSlot SlotID = "?principal"
	ResourceSlot  SlotID = "?resource"
)

// LinkValue binds one template slot to an entity uid.
type LinkValue struct {
	Slot  SlotID          `json:"slot"`
	Value types.EntityUID `json:"value"`
}

// TemplateLink instantiates a template into a concrete policy by filling
// its slots.
type TemplateLink struct {
	TemplateID     string      `json:"templateId"`
	ResultPolicyID string      `json:"resultPolicyId"`
	Values         []LinkValue `json:"instantiations"`
}

// NewTemplateLink builds a TemplateLink, requiring both ids and at least
// one slot binding.
func NewTemplateLink(templateID, resultPolicyID string, values []LinkValue) (TemplateLink, error) {
	if templateID == "" || resultPolicyID == "" {
		return TemplateLink{}, errors.New("template link requires a template id and a result policy id")
	}
	if len(values) == 0 {
		return TemplateLink{}, errors.New("template link requires at least one slot binding")
	}
	for _, v := range values {
		if v.Slot != PrincipalSlot && v.Slot != ResourceSlot {
			return TemplateLink{}, errors.Errorf("unknown template slot %q", v.Slot)
		}
		if v.Value.IsZero() {
			return TemplateLink{}, errors.Errorf("template slot %q has no value", v.Slot)
		}
	}
	return TemplateLink{
		TemplateID:     templateID,
		ResultPolicyID: resultPolicyID,
		Values:         append([]LinkValue(nil), values...),
	}, nil
}

// PolicySet groups static policies, templates and template links for one
// authorization call.
type PolicySet struct {
	Policies  []Policy
	Templates []Template
	Links     []TemplateLink
}

// NewPolicySet parses each source text into a fresh-id Policy.
func NewPolicySet(sources ...string) (*PolicySet, error) {
	ps := &PolicySet{}
	for _, src := range sources {
		p, err := NewPolicy(src)
		if err != nil {
			return nil, err
		}
		ps.Policies = append(ps.Policies, p)
	}
	return ps, nil
}

// Add appends a policy, rejecting duplicate ids.
func (ps *PolicySet) Add(p Policy) error {
	for _, existing := range ps.Policies {
		if existing.ID == p.ID {
			return errors.Errorf("duplicate policy id %q", p.ID)
		}
	}
	ps.Policies = append(ps.Policies, p)
	return nil
}

// policyMap renders the id→source map used on the wire.
func policyMap(policies []Policy) map[string]string {
	m := make(map[string]string, len(policies))
	for _, p := range policies {
		m[p.ID] = p.Source
	}
	return m
}
