package driver

import "testing"

func nonTermNode(kindName string, children ...*Node) *Node {
	return &Node{
		KindName: kindName,
		Children: children,
	}
}

func termNode(kindName string, text string) *Node {
	return &Node{
		KindName: kindName,
		Text:     text,
	}
}

func testTree(t *testing.T, got, want *Node) {
	t.Helper()

	if want == nil && got == nil {
		return
	}
	if want == nil || got == nil {
		t.Fatalf("unexpected tree; want: %+v, got: %+v", want, got)
	}
	if want.KindName != got.KindName {
		t.Fatalf("unexpected kind name; want: %v, got: %v", want.KindName, got.KindName)
	}
	if want.Text != got.Text {
		t.Fatalf("unexpected text; want: %#v, got: %#v", want.Text, got.Text)
	}
	if len(want.Children) != len(got.Children) {
		t.Fatalf("unexpected child count for %v; want: %v, got: %v", want.KindName, len(want.Children), len(got.Children))
	}
	for i := range want.Children {
		testTree(t, want.Children[i], got.Children[i])
	}
}
