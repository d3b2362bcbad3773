// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"encoding/json"
	"strings"

	"github.com/specialistvlad/ftdgo/internal/nodeid"
)

// DependencyType tags how an element depends on a variable.
type DependencyType string

const (
	DependencyStyle    DependencyType = "style"
	DependencyVisible  DependencyType = "visible"
	DependencyValue    DependencyType = "value"
	DependencyVariable DependencyType = "variable"
)

// ParameterValue is one attribute a Style dependency controls.
type ParameterValue struct {
	Conditions []ConditionWithValue `json:"conditions"`
	Default    *string              `json:"default"`
}

// Dependency is one reaction to a change of a variable.
type Dependency struct {
	Type DependencyType `json:"dependency_type"`
	// Condition is the value the variable must have for the dependency to
	// apply.
	Condition  *string                   `json:"condition,omitempty"`
	Negated    bool                      `json:"negated,omitempty"`
	Parameters map[string]ParameterValue `json:"parameters,omitempty"`
	// Remaining is the dotted path below the variable the dependency reads.
	Remaining string `json:"remaining,omitempty"`
}

// DataDependency is the current value of a variable and everything that
// depends on it, keyed by data id.
type DataDependency struct {
	Value        json.RawMessage         `json:"value"`
	Dependencies map[string][]Dependency `json:"dependencies"`
}

// DataDependenciesMap maps variable names to their dependencies.
type DataDependenciesMap map[string]*DataDependency

// ExternalChildrenCondition says that the external children of an element
// are rendered into SetAt once every container in Condition exists.
type ExternalChildrenCondition struct {
	Condition []string `json:"condition"`
	SetAt     string   `json:"set_at"`
}

// ExternalChildrenDependenciesMap maps owner data ids to the containers their
// external children are placed in.
type ExternalChildrenDependenciesMap map[string][]ExternalChildrenCondition

// setIDs assigns the data id of every element from its address. External
// children are addressed within their owner.
func setIDs(el *Element, addr *nodeid.Address) {
	if el.IsNull() || el.Common == nil {
		return
	}
	if el.Common.IsDummy {
		a := *addr
		a.Dummy = true
		addr = &a
	}
	el.Common.DataID = addr.String()
	if el.Container == nil {
		return
	}
	for i := range el.Container.Children {
		setIDs(&el.Container.Children[i], addr.Child(i))
	}
	if ext := el.Container.ExternalChildren; ext != nil && addr.External == nil {
		for i := range ext.Children {
			setIDs(&ext.Children[i], addr.Slot(slotName(ext.OpenID), i))
		}
	}
}

// slotName is the id segment of a slot; containers opened with `open: true`
// have no id of their own.
func slotName(openID string) string {
	if openID == "" {
		return "open"
	}
	return openID
}

// splitReference separates a reference into the data map key of its root
// variable and the dotted remainder.
func splitReference(ref string) (string, string) {
	root, rest := splitThingPath(ref)
	return root, strings.Join(rest, ".")
}

type dependencyCollector struct {
	doc  *Doc
	data DataDependenciesMap
}

func (c *dependencyCollector) add(ref, dataID string, dep Dependency) {
	root, rest := splitReference(ref)
	entry, ok := c.data[root]
	if !ok {
		// The reference does not point at a variable.
		return
	}
	dep.Remaining = rest
	entry.Dependencies[dataID] = append(entry.Dependencies[dataID], dep)
}

// dataDependencies builds the dependency map of every variable of the bag and
// every instance local.
func (d *Doc) dataDependencies(main *Element) (DataDependenciesMap, error) {
	c := &dependencyCollector{doc: d, data: make(DataDependenciesMap)}
	vars := make(map[string]*Variable)
	for name, t := range d.Bag {
		if v, ok := t.(*Variable); ok {
			vars[name] = v
		}
	}
	for name, v := range d.Locals {
		vars[name] = v
	}
	for _, name := range sortedKeys(vars) {
		v := vars[name]
		val, err := v.Resolve(d, v.Line)
		if err != nil {
			return nil, err
		}
		raw, err := d.ToJSON(val, v.Line)
		if err != nil {
			return nil, err
		}
		c.data[name] = &DataDependency{Value: raw, Dependencies: make(map[string][]Dependency)}
	}

	// A conditional variable changes when the variables its conditions read
	// change.
	for _, name := range sortedKeys(vars) {
		for _, cv := range vars[name].Conditions {
			cond, err := cv.Condition.ToCondition(d, vars[name].Line)
			if err != nil {
				return nil, err
			}
			if cond == nil {
				continue
			}
			value := cond.Value
			c.add(cond.Variable, name, Dependency{Type: DependencyVariable, Condition: &value, Negated: cond.Negated})
		}
	}

	c.walk(main)
	return c.data, nil
}

func (c *dependencyCollector) walk(el *Element) {
	if el.IsNull() || el.Common == nil {
		return
	}
	common := el.Common
	if common.Reference != "" {
		c.add(common.Reference, common.DataID, Dependency{Type: DependencyValue})
	}
	if cond := common.Condition; cond != nil {
		value := cond.Value
		c.add(cond.Variable, common.DataID, Dependency{Type: DependencyVisible, Condition: &value, Negated: cond.Negated})
	}
	for _, attr := range sortedKeys(common.ConditionalAttributes) {
		ca := common.ConditionalAttributes[attr]
		for _, cv := range ca.Conditions {
			value := cv.Condition.Value
			c.add(cv.Condition.Variable, common.DataID, Dependency{
				Type:      DependencyStyle,
				Condition: &value,
				Negated:   cv.Condition.Negated,
				Parameters: map[string]ParameterValue{
					attr: {Conditions: ca.Conditions, Default: ca.Default},
				},
			})
		}
	}
	for i := range el.Children() {
		c.walk(&el.Container.Children[i])
	}
}

// externalChildrenDependencies lists, for every element with external
// children, the containers the children are placed in together with the
// chain of container data ids from the owner down to each of them.
func externalChildrenDependencies(main *Element) ExternalChildrenDependenciesMap {
	out := make(ExternalChildrenDependenciesMap)
	var walk func(el *Element)
	walk = func(el *Element) {
		if el.IsNull() || el.Container == nil {
			return
		}
		if ext := el.Container.ExternalChildren; ext != nil {
			for _, path := range ext.Paths {
				chain := []string{}
				cur := el
				for _, i := range path {
					cur = cur.At([]int{i})
					if cur == nil || cur.Common == nil {
						break
					}
					chain = append(chain, cur.Common.DataID)
				}
				setAt := el.Common.DataID
				if len(chain) > 0 {
					setAt = chain[len(chain)-1]
				}
				out[el.Common.DataID] = append(out[el.Common.DataID], ExternalChildrenCondition{
					Condition: chain,
					SetAt:     setAt,
				})
			}
		}
		for i := range el.Container.Children {
			walk(&el.Container.Children[i])
		}
	}
	walk(main)
	return out
}
