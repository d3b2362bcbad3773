// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/specialistvlad/ftdgo/internal/registry"
)

// KernelSpec defines a built-in component.
type KernelSpec struct {
	Type ElementType
	// Arguments are the kernel's own arguments; the common layout arguments
	// are added on registration.
	Arguments map[string]Kind
	// Reference names the argument whose bag path becomes the element's
	// reference.
	Reference string
	Build     func(in *kernelInput) (Element, error)
}

// commonArguments returns the layout and style arguments every component
// accepts.
func commonArguments() map[string]Kind {
	out := make(map[string]Kind)
	for _, name := range []string{
		"id", "region", "slot", "align", "link", "color", "background-color",
		"border-color", "padding", "padding-horizontal", "padding-vertical",
		"width", "height", "min-width", "max-width", "min-height", "max-height",
		"position", "overflow-x", "overflow-y", "cursor", "submit",
	} {
		out[name] = OptionalKind(StringKind())
	}
	for _, name := range []string{
		"top", "bottom", "left", "right", "move-up", "move-down", "move-left",
		"move-right", "rotate", "border-width", "border-radius", "z-index",
	} {
		out[name] = OptionalKind(IntegerKind())
	}
	for _, name := range []string{"scale", "scale-x", "scale-y", "opacity"} {
		out[name] = OptionalKind(DecimalKind())
	}
	out["open-in-new-tab"] = OptionalKind(BooleanKind())
	return out
}

func optional(k Kind) Kind { return OptionalKind(k) }

func withDefault(k Kind, def string) Kind { return k.WithDefault(&def) }

func textArguments() map[string]Kind {
	return map[string]Kind{
		"text":       CaptionOrBodyKind(),
		"line-clamp": optional(IntegerKind()),
		"style":      optional(StringKind()),
		"size":       optional(IntegerKind()),
		"text-align": optional(StringKind()),
	}
}

func containerArguments() map[string]Kind {
	return map[string]Kind{
		"open":    optional(StringKind()),
		"wrap":    withDefault(BooleanKind(), "false"),
		"spacing": optional(StringKind()),
	}
}

func kernelSpecs() map[string]KernelSpec {
	grid := containerArguments()
	for _, name := range []string{"columns", "rows", "areas"} {
		grid[name] = optional(StringKind())
	}
	code := textArguments()
	code["lang"] = withDefault(StringKind(), "txt")
	code["theme"] = optional(StringKind())

	return map[string]KernelSpec{
		"text":       {Type: ElementText, Arguments: textArguments(), Reference: "text", Build: buildText(ElementText)},
		"text-block": {Type: ElementTextBlock, Arguments: textArguments(), Reference: "text", Build: buildText(ElementTextBlock)},
		"code":       {Type: ElementCode, Arguments: code, Reference: "text", Build: buildText(ElementCode)},
		"image": {Type: ElementImage, Reference: "src", Build: buildImage, Arguments: map[string]Kind{
			"src":         CaptionKind(),
			"description": optional(StringKind()),
			"crop":        withDefault(BooleanKind(), "false"),
		}},
		"iframe": {Type: ElementIFrame, Reference: "src", Build: buildIFrame, Arguments: map[string]Kind{
			"src":     optional(CaptionKind()),
			"youtube": optional(StringKind()),
		}},
		"input": {Type: ElementInput, Reference: "value", Build: buildInput, Arguments: map[string]Kind{
			"placeholder": optional(StringKind()),
			"value":       optional(CaptionKind()),
			"multiline":   withDefault(BooleanKind(), "false"),
			"type":        optional(StringKind()),
		}},
		"integer": {Type: ElementInteger, Reference: "value", Build: buildFormatted(ElementInteger), Arguments: map[string]Kind{
			"value":  IntegerKind().AsCaption(),
			"format": optional(StringKind()),
		}},
		"decimal": {Type: ElementDecimal, Reference: "value", Build: buildFormatted(ElementDecimal), Arguments: map[string]Kind{
			"value":  DecimalKind().AsCaption(),
			"format": optional(StringKind()),
		}},
		"boolean": {Type: ElementBoolean, Reference: "value", Build: buildBoolean, Arguments: map[string]Kind{
			"value": BooleanKind().AsCaption(),
			"true":  optional(StringKind()),
			"false": optional(StringKind()),
		}},
		"row":    {Type: ElementRow, Arguments: containerArguments(), Build: buildContainer(ElementRow)},
		"column": {Type: ElementColumn, Arguments: containerArguments(), Build: buildContainer(ElementColumn)},
		"scene":  {Type: ElementScene, Arguments: containerArguments(), Build: buildContainer(ElementScene)},
		"grid":   {Type: ElementGrid, Arguments: grid, Build: buildContainer(ElementGrid)},
		"null": {Type: ElementNull, Arguments: map[string]Kind{}, Build: func(*kernelInput) (Element, error) {
			return NullElement(), nil
		}},
	}
}

// newKernelRegistry registers every kernel with the common arguments merged
// in and validates the result.
func newKernelRegistry(ctx context.Context) *registry.Registry[KernelSpec] {
	kernels := registry.New[KernelSpec]()
	specs := kernelSpecs()
	for _, name := range sortedKeys(specs) {
		spec := specs[name]
		args := commonArguments()
		for arg, k := range spec.Arguments {
			args[arg] = k
		}
		spec.Arguments = args
		kernels.Register(name, spec)
	}
	if err := kernels.Validate(ctx, validateKernel); err != nil {
		panic(fmt.Sprintf("kernel registry is inconsistent: %v", err))
	}
	return kernels
}

func validateKernel(_ string, spec KernelSpec) error {
	var errs []error
	if spec.Type == "" {
		errs = append(errs, errors.New("element type is empty"))
	}
	if spec.Build == nil {
		errs = append(errs, errors.New("builder is missing"))
	}
	if spec.Reference != "" {
		if _, ok := spec.Arguments[spec.Reference]; !ok {
			errs = append(errs, fmt.Errorf("reference argument %q is not declared", spec.Reference))
		}
	}
	for name := range commonArguments() {
		if _, ok := spec.Arguments[name]; !ok {
			errs = append(errs, fmt.Errorf("common argument %q is missing", name))
		}
	}
	return errors.Join(errs...)
}

// kernelComponents returns the bag entries of the kernel components.
func kernelComponents(kernels *registry.Registry[KernelSpec]) map[string]Thing {
	bag := make(map[string]Thing, kernels.Len())
	for _, name := range kernels.Names() {
		spec, _ := kernels.Get(name)
		full := KernelDoc + "#" + name
		bag[full] = &Component{
			FullName:  full,
			Arguments: spec.Arguments,
			Kernel:    true,
		}
	}
	return bag
}

// kernelInput gives a builder typed access to the bound arguments. Every
// argument a builder reads is marked used; the rest end up in Common.Style.
type kernelInput struct {
	doc  *Doc
	args map[string]Binding
	line int
	used map[string]bool
}

func (in *kernelInput) value(name string) (Value, bool) {
	in.used[name] = true
	b, ok := in.args[name]
	if !ok || b.Value.IsNull() {
		return Value{}, false
	}
	return b.Value.Unwrap(), true
}

func (in *kernelInput) str(name string) (string, bool) {
	v, ok := in.value(name)
	if !ok {
		return "", false
	}
	return v.ToString()
}

func (in *kernelInput) integer(name string) *int64 {
	v, ok := in.value(name)
	if !ok || v.Type != ValueInteger {
		return nil
	}
	i := v.Integer
	return &i
}

func (in *kernelInput) boolean(name string) bool {
	v, ok := in.value(name)
	return ok && v.Type == ValueBoolean && v.Boolean
}

// finish fills Common from the identity arguments and the unused ones.
func (in *kernelInput) finish(el Element) (Element, error) {
	c := &Common{}
	if id, ok := in.str("id"); ok {
		c.ID = id
	}
	if r, ok := in.str("region"); ok {
		region, err := ParseRegion(in.doc.ID, in.line, r)
		if err != nil {
			return Element{}, err
		}
		c.Region = region
	}
	for _, name := range sortedKeys(in.args) {
		if in.used[name] || name == loopVar {
			continue
		}
		if s, ok := in.str(name); ok {
			if c.Style == nil {
				c.Style = make(map[string]string)
			}
			c.Style[name] = s
		}
	}
	el.Common = c
	return el, nil
}

func buildText(typ ElementType) func(*kernelInput) (Element, error) {
	return func(in *kernelInput) (Element, error) {
		text, _ := in.str("text")
		t := &Text{Text: text, Source: in.args["text"].Value.Unwrap().Source.String(), LineClamp: in.integer("line-clamp")}
		if typ == ElementCode {
			t.Lang, _ = in.str("lang")
		}
		return in.finish(Element{Type: typ, Text: t})
	}
}

func buildImage(in *kernelInput) (Element, error) {
	src, _ := in.str("src")
	desc, _ := in.str("description")
	return in.finish(Element{Type: ElementImage, Image: &Image{Src: src, Description: desc, Crop: in.boolean("crop")}})
}

func buildIFrame(in *kernelInput) (Element, error) {
	src, hasSrc := in.str("src")
	youtube, hasYoutube := in.str("youtube")
	switch {
	case hasSrc && hasYoutube:
		return Element{}, ftderr.Forbiddenf(in.doc.ID, in.line, "ftd.iframe takes either src or youtube, not both")
	case hasYoutube:
		src = "https://www.youtube.com/embed/" + strings.TrimSpace(youtube)
	case !hasSrc:
		return Element{}, ftderr.MissingDataf(in.doc.ID, in.line, "ftd.iframe needs src or youtube")
	}
	return in.finish(Element{Type: ElementIFrame, IFrame: &IFrame{Src: src}})
}

func buildInput(in *kernelInput) (Element, error) {
	placeholder, _ := in.str("placeholder")
	value, _ := in.str("value")
	return in.finish(Element{Type: ElementInput, Input: &Input{Placeholder: placeholder, Value: value, Multiline: in.boolean("multiline")}})
}

func buildFormatted(typ ElementType) func(*kernelInput) (Element, error) {
	return func(in *kernelInput) (Element, error) {
		value, _ := in.str("value")
		format, _ := in.str("format")
		return in.finish(Element{Type: typ, Formatted: &Formatted{Value: value, Format: format}})
	}
}

func buildBoolean(in *kernelInput) (Element, error) {
	value := in.boolean("value")
	trueLabel, hasTrue := in.str("true")
	falseLabel, hasFalse := in.str("false")
	text := strconv.FormatBool(value)
	switch {
	case value && hasTrue:
		text = trueLabel
	case !value && hasFalse:
		text = falseLabel
	}
	return in.finish(Element{Type: ElementBoolean, Formatted: &Formatted{Value: text}})
}

func buildContainer(typ ElementType) func(*kernelInput) (Element, error) {
	return func(in *kernelInput) (Element, error) {
		c := &Container{Children: []Element{}, Wrap: in.boolean("wrap")}
		if open, ok := in.str("open"); ok {
			switch open {
			case "true":
				c.Open = true
			case "false":
			default:
				c.OpenID = open
			}
		}
		return in.finish(Element{Type: typ, Container: c})
	}
}
