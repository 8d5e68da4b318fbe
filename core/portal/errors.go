package portal

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("permission denied")
	ErrLoading          = errors.New("data is still loading")
	ErrSelfDelete       = errors.New("you cannot delete your own account")
)
