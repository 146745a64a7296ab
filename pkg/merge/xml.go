package merge

import (
	"github.com/beevik/etree"

	"modfuse/pkg/errors"
)

// mergeXML merges two XML documents element-wise. An element of the
// loser is carried over only when the winner's parent has no element
// with the same tag and identity attribute; matching elements are
// merged recursively with the winner's attributes kept.
func mergeXML(winner, loser []byte) ([]byte, error) {
	wdoc := etree.NewDocument()
	if err := wdoc.ReadFromBytes(winner); err != nil {
		return nil, errors.Wrap(err, errors.ErrUnmergeable, "winner is not valid xml")
	}
	// ReadFromBytes accepts comment-only or empty input without error.
	if wdoc.Root() == nil {
		return nil, errors.New(errors.ErrUnmergeable, "winner has no root element")
	}
	ldoc := etree.NewDocument()
	if err := ldoc.ReadFromBytes(loser); err != nil {
		return nil, errors.Wrap(err, errors.ErrUnmergeable, "loser is not valid xml")
	}
	if ldoc.Root() == nil {
		return nil, errors.New(errors.ErrUnmergeable, "loser has no root element")
	}
	if wdoc.Root().Tag != ldoc.Root().Tag {
		return nil, errors.Newf(errors.ErrUnmergeable,
			"xml roots differ: %s vs %s", wdoc.Root().Tag, ldoc.Root().Tag)
	}

	mergeElements(wdoc.Root(), ldoc.Root())
	wdoc.Indent(2)
	return wdoc.WriteToBytes()
}

// identity attributes used to match repeated elements of the same tag.
var identityAttrs = []string{"name", "id", "key"}

func mergeElements(winner, loser *etree.Element) {
	for _, lchild := range loser.ChildElements() {
		match := findMatch(winner, lchild)
		if match == nil {
			winner.AddChild(lchild.Copy())
			continue
		}
		mergeElements(match, lchild)
	}
}

func findMatch(parent, candidate *etree.Element) *etree.Element {
	key := identityOf(candidate)
	for _, child := range parent.ChildElements() {
		if child.Tag != candidate.Tag {
			continue
		}
		if identityOf(child) == key {
			return child
		}
	}
	return nil
}

func identityOf(el *etree.Element) string {
	for _, attr := range identityAttrs {
		if v := el.SelectAttrValue(attr, ""); v != "" {
			return attr + "=" + v
		}
	}
	return ""
}
