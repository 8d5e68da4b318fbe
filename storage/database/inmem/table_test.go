package inmemdb

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classpoll/core/gateway"
	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
)

func TestTable_crud(t *testing.T) {
	ctx := context.Background()
	tbl := NewTable[user.User]()
	tbl.Seed(user.User{ID: "u1", Name: "Awa"}, user.User{ID: "u2", Name: "Modou"})

	require.NoError(t, tbl.Insert(ctx, user.User{ID: "u3", Name: "Fatou"}))
	assert.Equal(t, ErrDuplicateID, errors.Cause(tbl.Insert(ctx, user.User{ID: "u1"})))

	require.NoError(t, tbl.Update(ctx, "u2", gateway.Fields{"Name": "Modou Fall", "ClassGroup": "6eA", "Role": user.RoleStudent}))
	got, _ := tbl.Get("u2")
	assert.Equal(t, user.User{ID: "u2", Name: "Modou Fall", ClassGroup: "6eA", Role: user.RoleStudent}, got)

	assert.Error(t, tbl.Update(ctx, "u2", gateway.Fields{"Nope": 1}), "unknown field")
	assert.Equal(t, ErrNoRow, errors.Cause(tbl.Update(ctx, "zz", gateway.Fields{"Name": "x"})))

	require.NoError(t, tbl.Delete(ctx, "u1"))
	require.NoError(t, tbl.Upsert(ctx, user.User{ID: "u4"}))

	all, err := tbl.LoadAll(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, u := range all {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"u2", "u3", "u4"}, ids)
}

func TestTable_updatePollVotes(t *testing.T) {
	ctx := context.Background()
	tbl := NewTable[school.Poll]()
	tbl.Seed(school.Poll{
		ID:      "p1",
		Options: []school.PollOption{{ID: "a"}, {ID: "b"}},
		Ballots: map[string]string{"old": "a"},
	})

	require.NoError(t, tbl.Update(ctx, "p1", gateway.Fields{
		"Options":      []school.PollOption{{ID: "a"}, {ID: "b", Votes: 1}},
		"VotedUserIDs": []string{"v1"},
		"Ballots":      map[string]string{"v1": "b"},
	}))
	got, _ := tbl.Get("p1")
	assert.Equal(t, 1, got.Options[1].Votes)
	assert.Equal(t, []string{"v1"}, got.VotedUserIDs)
	assert.Equal(t, map[string]string{"v1": "b"}, got.Ballots)
}

func TestTable_failuresAndCalls(t *testing.T) {
	ctx := context.Background()
	tbl := NewTable[school.Exam]()
	boom := errors.New("boom")

	tbl.FailOn(OpInsert, boom)
	assert.Equal(t, boom, tbl.Insert(ctx, school.Exam{ID: "e1"}))
	assert.Equal(t, 0, tbl.Len())

	tbl.FailOn(OpInsert, nil)
	require.NoError(t, tbl.Insert(ctx, school.Exam{ID: "e1"}))
	require.NoError(t, tbl.Delete(ctx, "e1"))

	assert.Equal(t, []Call{{Op: OpInsert, ID: "e1"}, {Op: OpInsert, ID: "e1"}, {Op: OpDelete, ID: "e1"}}, tbl.Calls())
	assert.Equal(t, []Call{{Op: OpDelete, ID: "e1"}}, tbl.Calls(OpDelete))
}

func TestSettingsTable(t *testing.T) {
	ctx := context.Background()
	db := Open()
	gw := db.Gateway()

	_, ok, err := gw.Settings.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, gw.Settings.Upsert(ctx, school.Settings{SchoolName: "Lycée", ThemeColor: "rose"}))
	settings, ok, err := gw.Settings.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Lycée", settings.SchoolName)
}
