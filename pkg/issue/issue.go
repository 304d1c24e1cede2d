// Package issue links a branch to the tracker issue it addresses.
package issue

import (
	"context"
	"strconv"
)

// Issue identifies a tracker issue.
type Issue struct {
	ID string
}

// Linker resolves the issue associated with a branch. A nil Issue with a nil
// error means the branch has no linked issue.
type Linker interface {
	Resolve(ctx context.Context, branch string) (*Issue, error)
}

// NoneLinker never finds an issue.
type NoneLinker struct{}

var _ Linker = NoneLinker{}

// Resolve implements Linker.
func (NoneLinker) Resolve(context.Context, string) (*Issue, error) {
	return nil, nil
}

// Format renders an optional issue the way it appears in the generation
// prompt: None when absent, Some("<id>") otherwise.
func Format(i *Issue) string {
	if i == nil {
		return "None"
	}
	return "Some(" + strconv.Quote(i.ID) + ")"
}
