package project

import (
	"fmt"

	"github.com/rpggio/efxcreator/internal/domain/timeline"
)

// EditKind selects the timeline operation of an Edit.
type EditKind string

const (
	EditAdd    EditKind = "add"
	EditUpdate EditKind = "update"
	EditDelete EditKind = "delete"
)

// Edit is a single timeline change. Position indexes the timeline as it is
// before the edit and is ignored for EditAdd.
type Edit struct {
	Kind     EditKind
	Position int
	Entry    timeline.Entry
}

// AddEntry builds an add edit.
func AddEntry(entry timeline.Entry) Edit {
	return Edit{Kind: EditAdd, Entry: entry}
}

// UpdateEntry builds an update edit.
func UpdateEntry(position int, entry timeline.Entry) Edit {
	return Edit{Kind: EditUpdate, Position: position, Entry: entry}
}

// DeleteEntry builds a delete edit.
func DeleteEntry(position int) Edit {
	return Edit{Kind: EditDelete, Position: position}
}

func (e Edit) apply(engine *timeline.Engine) error {
	switch e.Kind {
	case EditAdd:
		return engine.AddEntry(e.Entry)
	case EditUpdate:
		return engine.UpdateEntry(e.Position, e.Entry)
	case EditDelete:
		return engine.DeleteEntry(e.Position)
	default:
		return fmt.Errorf("%w: unknown edit kind %q", ErrInvalidInput, e.Kind)
	}
}
