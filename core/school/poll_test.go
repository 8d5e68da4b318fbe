package school

import (
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classpoll/core/user"
)

func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("opt-%d", n)
	}
}

func newTestPoll(t *testing.T, options ...string) Poll {
	np := NewPoll{Title: "Sortie", Options: options}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return np.Build("p1", user.User{ID: "creator"}, now, sequentialIDs())
}

func TestPoll_CastVote(t *testing.T) {
	poll := newTestPoll(t, "A", "B")

	voted, err := poll.CastVote("v1", "opt-2")
	require.NoError(t, err)
	assert.Equal(t, 0, voted.Options[0].Votes)
	assert.Equal(t, 1, voted.Options[1].Votes)
	assert.Equal(t, []string{"v1"}, voted.VotedUserIDs)
	assert.Equal(t, voted.TotalVotes(), len(voted.VotedUserIDs))

	// receiver untouched
	assert.Empty(t, poll.VotedUserIDs)
	assert.Equal(t, 0, poll.TotalVotes())

	tests := []struct {
		name     string
		voter    string
		optionID string
		wantErr  error
	}{
		{name: "second vote", voter: "v1", optionID: "opt-1", wantErr: ErrAlreadyVoted},
		{name: "unknown option", voter: "v2", optionID: "nope", wantErr: ErrOptionNotFound},
		{name: "other voter", voter: "v2", optionID: "opt-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := voted.CastVote(tt.voter, tt.optionID)
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("CastVote() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// Changing a vote moves the count: the old option loses the vote the new one gains.
func TestPoll_ChangeVote(t *testing.T) {
	poll := newTestPoll(t, "A", "B", "C")
	poll, err := poll.CastVote("v1", "opt-1")
	require.NoError(t, err)

	changed, err := poll.ChangeVote("v1", "opt-3")
	require.NoError(t, err)
	assert.Equal(t, 0, changed.Options[0].Votes)
	assert.Equal(t, 1, changed.Options[2].Votes)
	assert.Equal(t, 1, changed.TotalVotes())
	assert.Len(t, changed.VotedUserIDs, 1)
	ballot, ok := changed.Ballot("v1")
	assert.True(t, ok)
	assert.Equal(t, "opt-3", ballot)

	same, err := changed.ChangeVote("v1", "opt-3")
	require.NoError(t, err)
	assert.Equal(t, changed.Options, same.Options)

	tests := []struct {
		name     string
		poll     Poll
		voter    string
		optionID string
		wantErr  error
	}{
		{name: "never voted", poll: changed, voter: "v2", optionID: "opt-1", wantErr: ErrNoBallot},
		{
			name:     "legacy voter without ballot",
			poll:     Poll{Options: []PollOption{{ID: "x", Votes: 1}}, VotedUserIDs: []string{"old"}},
			voter:    "old",
			optionID: "x",
			wantErr:  ErrNoBallot,
		},
		{name: "unknown option", poll: changed, voter: "v1", optionID: "nope", wantErr: ErrOptionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.poll.ChangeVote(tt.voter, tt.optionID)
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("ChangeVote() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewPoll_Build(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("default expiry", func(t *testing.T) {
		poll := NewPoll{Title: "Q", Options: []string{"A", "B"}}.Build("p", user.User{ID: "u"}, now, sequentialIDs())
		assert.Equal(t, now.Add(DefaultPollLifetime), poll.ExpiresAt)
		assert.True(t, poll.IsActive(now))
		assert.False(t, poll.IsActive(now.Add(DefaultPollLifetime)))
		assert.Equal(t, "u", poll.CreatedByID)
		assert.NotNil(t, poll.VotedUserIDs)
	})

	t.Run("explicit expiry", func(t *testing.T) {
		expires := now.Add(time.Hour)
		poll := NewPoll{Title: "Q", Options: []string{"A", "B"}, ExpiresAt: expires}.Build("p", user.User{}, now, sequentialIDs())
		assert.Equal(t, expires, poll.ExpiresAt)
	})
}

func TestNewPoll_Validate(t *testing.T) {
	validate := newValidate()

	tests := []struct {
		name        string
		np          NewPoll
		wantOptions []string
		wantErr     bool
	}{
		{name: "drops blank options", np: NewPoll{Title: "Q", Options: []string{" A ", "", "  ", "B"}}, wantOptions: []string{"A", "B"}},
		{name: "needs two options", np: NewPoll{Title: "Q", Options: []string{"A", " "}}, wantOptions: []string{"A"}, wantErr: true},
		{name: "blank title", np: NewPoll{Title: " ", Options: []string{"A", "B"}}, wantOptions: []string{"A", "B"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			np := tt.np
			if err := np.Validate(validate); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.wantOptions, np.Options)
		})
	}
}
