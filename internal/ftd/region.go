// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

// headingOf returns the heading priority of el, if it has one.
func headingOf(el *Element) (int, bool) {
	if el.Common == nil {
		return 0, false
	}
	return el.Common.Region.HeadingPriority()
}

// renest groups a heading container with the siblings that follow it, up to
// the next heading of equal or higher priority, then does the same inside
// every container. Applying it twice gives the same tree.
func renest(children []Element) []Element {
	if children == nil {
		return nil
	}
	out := make([]Element, 0, len(children))
	for i := 0; i < len(children); {
		el := children[i]
		i++
		if p, ok := headingOf(&el); ok && el.Container != nil {
			for i < len(children) {
				if q, heading := headingOf(&children[i]); heading && q <= p {
					break
				}
				el.Container.Children = append(el.Container.Children, children[i])
				i++
			}
		}
		if el.Container != nil {
			el.Container.Children = renest(el.Container.Children)
		}
		out = append(out, el)
	}
	return out
}
