package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

func named(id, name string, status domain.ParticipantStatus) domain.ParticipantInfoModel {
	p := participant(id)
	p.DisplayName = name
	p.Status = status
	return p
}

func TestListLocalRow(t *testing.T) {
	t.Parallel()

	local := core.NewLocalUserState()
	local.DisplayName = "Me"
	l := NewParticipantsListViewModel(local, nil)
	require.True(t, l.LocalParticipant().IsMuted)
	require.True(t, l.LocalParticipant().IsLocalParticipant)

	local.AudioState.Operation = core.AudioOn
	l.Update(local, core.RemoteParticipantsState{})
	require.False(t, l.LocalParticipant().IsMuted)
}

func TestListLobbyVisibility(t *testing.T) {
	t.Parallel()

	remote := roster(1,
		named("a", "Ann", domain.ParticipantStatusConnected),
		named("b", "Bob", domain.ParticipantStatusInLobby),
		named("c", "Cid", domain.ParticipantStatusDisconnected),
		named("d", "Dee", domain.ParticipantStatusHold),
	)

	local := core.NewLocalUserState()
	local.ParticipantRole = domain.RoleAttendee
	l := NewParticipantsListViewModel(local, nil)
	l.Update(local, remote)
	require.Len(t, l.Participants(), 2)
	require.Empty(t, l.LobbyParticipants())
	require.True(t, l.Participants()[1].IsHold)

	// Promotion re-evaluates the same roster.
	local.ParticipantRole = domain.RoleOrganizer
	l.Update(local, remote)
	lobby := l.LobbyParticipants()
	require.Len(t, lobby, 1)
	require.Equal(t, "b", lobby[0].ParticipantID)
	require.True(t, lobby[0].IsInLobby)
}

func TestListSortedParticipants(t *testing.T) {
	t.Parallel()

	local := core.NewLocalUserState()
	local.DisplayName = "zed"
	viewData := viewDataMap{"c": {DisplayName: "Aaron"}}

	l := NewParticipantsListViewModel(local, viewData)
	l.Update(local, roster(1,
		named("a", "bob", domain.ParticipantStatusConnected),
		named("b", "Alice", domain.ParticipantStatusConnected),
		named("c", "Zoe", domain.ParticipantStatusConnected),
	))

	sorted := l.SortedParticipants()
	names := make([]string, len(sorted))
	for i, c := range sorted {
		names[i] = c.DisplayName
	}
	require.Equal(t, []string{"zed", "Aaron", "Alice", "bob"}, names)
}

func TestListSortedRemoteLeavesOutLocal(t *testing.T) {
	t.Parallel()

	local := core.NewLocalUserState()
	local.DisplayName = "Me"
	l := NewParticipantsListViewModel(local, nil)
	require.Empty(t, l.SortedRemote())

	l.Update(local, roster(1,
		named("b", "bob", domain.ParticipantStatusConnected),
		named("a", "Ann", domain.ParticipantStatusConnected),
	))
	remote := l.SortedRemote()
	require.Len(t, remote, 2)
	require.Equal(t, "a", remote[0].ParticipantID)
	require.Equal(t, "b", remote[1].ParticipantID)
	for _, c := range remote {
		require.False(t, c.IsLocalParticipant)
	}
	require.Len(t, l.SortedParticipants(), 3)
}
