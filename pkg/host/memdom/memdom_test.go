package memdom

import (
	"testing"
)

func TestInsertAndRemove(t *testing.T) {
	d := New()
	root := d.CreateContainer("div")
	a := d.CreateElement("a")
	b := d.CreateElement("b")
	c := d.CreateElement("i")

	d.Insert(a, root, nil)
	d.Insert(c, root, nil)
	d.Insert(b, root, c)
	if got := root.InnerHTML(); got != "<a></a><b></b><i></i>" {
		t.Fatalf("InnerHTML() = %q", got)
	}

	// Inserting an attached node moves it.
	d.Insert(c, root, a)
	if got := root.InnerHTML(); got != "<i></i><a></a><b></b>" {
		t.Errorf("after move InnerHTML() = %q", got)
	}

	if d.NextSibling(c) != a {
		t.Errorf("NextSibling(i) != a")
	}
	if d.NextSibling(b) != nil {
		t.Errorf("NextSibling(last) = %v, want nil", d.NextSibling(b))
	}
	if d.ParentNode(a) != any(root) {
		t.Errorf("ParentNode(a) != root")
	}

	d.Remove(a)
	if got := root.InnerHTML(); got != "<i></i><b></b>" {
		t.Errorf("after remove InnerHTML() = %q", got)
	}
	if d.ParentNode(a) != nil {
		t.Errorf("removed node still has a parent")
	}
	// Removing a detached node is a no-op.
	d.Remove(a)
}

func TestPatchPropAndDispatch(t *testing.T) {
	d := New()
	el := d.CreateElement("button").(*Node)

	d.PatchProp(el, "class", nil, "primary")
	d.PatchProp(el, "disabled", nil, true)
	clicks := 0
	d.PatchProp(el, "onClick", nil, func() { clicks++ })

	if got := el.OuterHTML(); got != `<button class="primary" disabled="true"></button>` {
		t.Errorf("OuterHTML() = %q", got)
	}
	if !d.Dispatch(el, "click") || clicks != 1 {
		t.Errorf("Dispatch(click) did not call the listener")
	}
	if d.Dispatch(el, "input") {
		t.Errorf("Dispatch(input) reported a listener")
	}

	d.PatchProp(el, "class", "primary", nil)
	d.PatchProp(el, "onClick", nil, nil)
	if got := el.OuterHTML(); got != `<button disabled="true"></button>` {
		t.Errorf("OuterHTML() after removal = %q", got)
	}
	if d.Dispatch(el, "click") {
		t.Errorf("removed listener still dispatched")
	}
}

func TestSetElementText(t *testing.T) {
	d := New()
	el := d.CreateContainer("p")
	child := d.CreateElement("span")
	d.Insert(child, el, nil)

	d.SetElementText(el, "hello")
	if got := el.InnerHTML(); got != "hello" {
		t.Errorf("InnerHTML() = %q, want hello", got)
	}
	if d.ParentNode(child) != nil {
		t.Errorf("replaced child still attached")
	}

	d.SetElementText(el, "")
	if len(el.Children) != 0 {
		t.Errorf("SetElementText(\"\") left %d children", len(el.Children))
	}
}

func TestSerialization(t *testing.T) {
	d := New()
	root := d.CreateContainer("div")
	p := d.CreateElement("p")
	d.PatchProp(p, "title", nil, `say "hi"`)
	d.Insert(d.CreateText("a < b & c"), p, nil)
	d.Insert(p, root, nil)
	d.Insert(d.CreateElement("br"), root, nil)

	want := `<p title="say &quot;hi&quot;">a &lt; b &amp; c</p><br>`
	if got := root.InnerHTML(); got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
	if got := root.TextContent(); got != "a < b & c" {
		t.Errorf("TextContent() = %q", got)
	}
	if got := len(root.ByTag("p")); got != 1 {
		t.Errorf("ByTag(p) found %d", got)
	}
	if root.First("table") != nil {
		t.Errorf("First(table) != nil")
	}
}

func TestAttributeEscaping(t *testing.T) {
	d := New()
	root := d.CreateContainer("div")
	el := d.CreateElement("span")
	d.PatchProp(el, "data-x", nil, "a'b\n<c>\t&")
	d.Insert(el, root, nil)

	want := `<span data-x="a&#39;b&#10;&lt;c&gt;&#9;&amp;"></span>`
	if got := root.InnerHTML(); got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
}
