package school

import "github.com/trezcool/classpoll/core/user"

// Targeted is implemented by every entity that can be restricted to one class group.
// An empty Target means school-wide.
type Targeted interface {
	Target() string
}

// CanSee tells whether viewer may see item.
// A nil viewer, an Admin or a Responsible sees everything; anyone else only sees
// school-wide items and the items targeting their own class group.
func CanSee(viewer *user.User, item Targeted) bool {
	if viewer == nil || viewer.IsStaff() {
		return true
	}
	target := item.Target()
	return target == "" || target == viewer.ClassGroup
}

// Visible narrows items to what viewer may see. The input slice is never modified.
func Visible[T Targeted](viewer *user.User, items []T) []T {
	if viewer == nil || viewer.IsStaff() {
		return items
	}
	visible := make([]T, 0, len(items))
	for _, item := range items {
		if CanSee(viewer, item) {
			visible = append(visible, item)
		}
	}
	return visible
}
