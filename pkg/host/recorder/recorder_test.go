package recorder_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reactor/pkg/host/memdom"
	"github.com/vango-dev/reactor/pkg/host/recorder"
)

func TestRecorderLogsCalls(t *testing.T) {
	doc := memdom.New()
	rec := recorder.New(doc)
	root := doc.CreateContainer("ul")

	li := rec.CreateElement("li")
	text := rec.CreateText("a")
	rec.Insert(text, li, nil)
	rec.PatchProp(li, "onClick", nil, func() {})
	rec.PatchProp(li, "class", nil, "item")
	rec.Insert(li, root, nil)
	rec.SetText(text, "b")
	rec.Remove(li)

	want := []string{
		"createElement #1 <li>",
		`createText #2 "a"`,
		"insert #2 into #1 before #0",
		"patchProp #1 onClick=<func>",
		"patchProp #1 class=item",
		"insert #1 into #3 before #0",
		`setText #2 "b"`,
		"remove #1",
	}
	var got []string
	for _, c := range rec.Calls() {
		got = append(got, c.String())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	if n := rec.Count(recorder.OpInsert); n != 2 {
		t.Errorf("Count(insert) = %d, want 2", n)
	}
	if rec.ID(root) != 3 {
		t.Errorf("ID(root) = %d, want 3", rec.ID(root))
	}
	if root.InnerHTML() != "" {
		t.Errorf("calls were not forwarded: %q", root.InnerHTML())
	}
}

func TestRecorderReset(t *testing.T) {
	doc := memdom.New()
	rec := recorder.New(doc)
	el := rec.CreateElement("p")
	rec.Reset()

	if calls := rec.Calls(); len(calls) != 0 {
		t.Fatalf("Calls() after Reset = %v", calls)
	}
	rec.SetElementText(el, "x")
	if got := rec.Calls()[0].Node; got != 1 {
		t.Errorf("node id after Reset = %d, want 1", got)
	}
	if rec.Unwrap() != doc {
		t.Errorf("Unwrap() did not return the wrapped host")
	}
}
