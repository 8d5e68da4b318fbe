package school

import (
	"time"

	"github.com/pkg/errors"
)

func (p Poll) HasVoted(voterID string) bool {
	for _, id := range p.VotedUserIDs {
		if id == voterID {
			return true
		}
	}
	return false
}

func (p Poll) TotalVotes() int {
	var total int
	for _, opt := range p.Options {
		total += opt.Votes
	}
	return total
}

func (p Poll) IsActive(now time.Time) bool {
	return now.Before(p.ExpiresAt)
}

// Ballot returns the option voterID voted for, when it was recorded.
func (p Poll) Ballot(voterID string) (string, bool) {
	optionID, ok := p.Ballots[voterID]
	return optionID, ok
}

func (p Poll) option(optionID string) int {
	for i, opt := range p.Options {
		if opt.ID == optionID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the poll.
func (p Poll) Clone() Poll {
	clone := p
	clone.Options = append([]PollOption(nil), p.Options...)
	clone.VotedUserIDs = append(make([]string, 0, len(p.VotedUserIDs)+1), p.VotedUserIDs...)
	clone.Ballots = make(map[string]string, len(p.Ballots)+1)
	for voter, opt := range p.Ballots {
		clone.Ballots[voter] = opt
	}
	return clone
}

// CastVote returns a copy of the poll with voterID's vote for optionID recorded.
// The receiver is left untouched.
func (p Poll) CastVote(voterID, optionID string) (Poll, error) {
	if p.HasVoted(voterID) {
		return Poll{}, ErrAlreadyVoted
	}
	idx := p.option(optionID)
	if idx < 0 {
		return Poll{}, errors.Wrapf(ErrOptionNotFound, "option %q", optionID)
	}

	voted := p.Clone()
	voted.Options[idx].Votes++
	voted.VotedUserIDs = append(voted.VotedUserIDs, voterID)
	voted.Ballots[voterID] = optionID
	return voted, nil
}

// ChangeVote returns a copy of the poll where voterID's vote moved to optionID.
// Total votes stay equal to the number of voters.
func (p Poll) ChangeVote(voterID, optionID string) (Poll, error) {
	if !p.HasVoted(voterID) {
		return Poll{}, ErrNoBallot
	}
	previous, ok := p.Ballot(voterID)
	if !ok {
		return Poll{}, ErrNoBallot
	}
	idx := p.option(optionID)
	if idx < 0 {
		return Poll{}, errors.Wrapf(ErrOptionNotFound, "option %q", optionID)
	}

	changed := p.Clone()
	if previous == optionID {
		return changed, nil
	}
	if prev := changed.option(previous); prev >= 0 && changed.Options[prev].Votes > 0 {
		changed.Options[prev].Votes--
	}
	changed.Options[idx].Votes++
	changed.Ballots[voterID] = optionID
	return changed, nil
}
