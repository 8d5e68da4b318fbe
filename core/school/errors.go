package school

import "errors"

var (
	ErrNotFound         = errors.New("item not found")
	ErrPollNotFound     = errors.New("poll not found")
	ErrOptionNotFound   = errors.New("poll option not found")
	ErrAlreadyVoted     = errors.New("already voted on this poll")
	ErrNoBallot         = errors.New("no recorded vote to change")
	ErrClassGroupExists = errors.New("a class group with this name already exists")
)
