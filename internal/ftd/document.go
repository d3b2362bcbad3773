// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"context"
	"encoding/json"

	"github.com/specialistvlad/ftdgo/internal/ctxlog"
	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/specialistvlad/ftdgo/internal/nodeid"
)

// Document is the result of interpreting a document.
type Document struct {
	ID string `json:"-"`
	// Main is the root Column holding the top-level invocations.
	Main             Element                         `json:"main"`
	Data             DataDependenciesMap             `json:"data"`
	ExternalChildren ExternalChildrenDependenciesMap `json:"external_children"`
	// Locals maps every instance local to the data id of the element that
	// owns it.
	Locals       map[string]string `json:"locals"`
	Instructions []Instruction     `json:"-"`
	Bag          map[string]Thing  `json:"-"`
}

// JSON serialises the document. Map keys are written in sorted order, so the
// output is stable.
func (d *Document) JSON(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(d, "", "  ")
	}
	return json.Marshal(d)
}

// ElementByDataID finds the element a runtime addresses by its data id,
// including elements held in the external children of an owner.
func (d *Document) ElementByDataID(dataID string) (*Element, error) {
	addr, err := nodeid.Parse(dataID)
	if err != nil {
		return nil, ftderr.InvalidInputf(d.ID, "%v", err)
	}
	el := d.Main.At(addr.Path)
	if el != nil && addr.External != nil {
		el = externalAt(el, addr.External)
	}
	if el == nil || el.IsNull() {
		return nil, ftderr.NotFoundf(d.ID, 0, "no element with data id %q", dataID)
	}
	return el, nil
}

func externalAt(owner *Element, ext *nodeid.External) *Element {
	if owner.Container == nil || owner.Container.ExternalChildren == nil || len(ext.Path) == 0 {
		return nil
	}
	children := owner.Container.ExternalChildren
	if slotName(children.OpenID) != ext.Slot || ext.Path[0] >= len(children.Children) {
		return nil
	}
	return children.Children[ext.Path[0]].At(ext.Path[1:])
}

// postProcess renests regions, assigns data ids and extracts the dependency
// maps of the executed tree.
func postProcess(ctx context.Context, doc *Doc, main Element) (*Document, error) {
	main.Container.Children = renest(main.Container.Children)
	setIDs(&main, nodeid.New())

	data, err := doc.dataDependencies(&main)
	if err != nil {
		return nil, err
	}
	locals := make(map[string]string, len(doc.Locals))
	collectLocals(&main, locals)
	ctxlog.FromContext(ctx).Debug("Post-processed element tree.", "doc", doc.ID, "locals", len(locals))
	return &Document{
		ID:               doc.ID,
		Main:             main,
		Data:             data,
		ExternalChildren: externalChildrenDependencies(&main),
		Locals:           locals,
		Bag:              doc.Bag,
	}, nil
}

func collectLocals(el *Element, out map[string]string) {
	if el.IsNull() || el.Common == nil {
		return
	}
	for _, key := range el.Common.Locals {
		out[key] = el.Common.DataID
	}
	for i := range el.Children() {
		collectLocals(&el.Container.Children[i], out)
	}
}
