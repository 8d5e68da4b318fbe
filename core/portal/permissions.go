package portal

import "github.com/trezcool/classpoll/core/user"

func canPublish(viewer user.User) bool {
	return viewer.IsStaff()
}

// checkTarget tells whether viewer may publish for target.
// Admins target any class or the whole school, Responsibles only their own class.
func checkTarget(viewer user.User, target string) error {
	switch {
	case viewer.IsAdmin():
		return nil
	case viewer.IsResponsible() && viewer.ClassGroup != "" && target == viewer.ClassGroup:
		return nil
	}
	return ErrForbidden
}

// canDelete tells whether viewer may delete an item targeting target and owned by ownerID.
// ownerID is empty for items without an author.
func canDelete(viewer user.User, target, ownerID string) bool {
	switch {
	case viewer.IsAdmin():
		return true
	case viewer.IsResponsible() && viewer.ClassGroup != "" && target == viewer.ClassGroup:
		return true
	case ownerID != "" && ownerID == viewer.ID:
		return true
	}
	return false
}

func canVote(viewer user.User) bool {
	return viewer.IsStudent() || viewer.IsResponsible()
}
