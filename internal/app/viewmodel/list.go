package viewmodel

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

// ParticipantsListCellViewModel is one row of the participants list.
type ParticipantsListCellViewModel struct {
	ParticipantID      string `json:"participantId,omitempty"`
	DisplayName        string `json:"displayName"`
	IsMuted            bool   `json:"isMuted"`
	IsHold             bool   `json:"isHold"`
	IsInLobby          bool   `json:"isInLobby,omitempty"`
	IsLocalParticipant bool   `json:"isLocalParticipant"`
}

func localListCell(local core.LocalUserState) ParticipantsListCellViewModel {
	return ParticipantsListCellViewModel{
		DisplayName:        local.DisplayName,
		IsMuted:            local.AudioState.Operation != core.AudioOn,
		IsLocalParticipant: true,
	}
}

func remoteListCell(p domain.ParticipantInfoModel) ParticipantsListCellViewModel {
	return ParticipantsListCellViewModel{
		ParticipantID: p.UserIdentifier,
		DisplayName:   p.DisplayName,
		IsMuted:       p.IsMuted,
		IsHold:        p.Status == domain.ParticipantStatusHold,
		IsInLobby:     p.Status == domain.ParticipantStatusInLobby,
	}
}

// name resolves the row title, preferring a non-blank view-data override.
func (c ParticipantsListCellViewModel) name(viewData ViewDataLookup) string {
	if viewData != nil && !c.IsLocalParticipant {
		if vd, ok := viewData.ViewData(c.ParticipantID); ok && strings.TrimSpace(vd.DisplayName) != "" {
			return vd.DisplayName
		}
	}
	return c.DisplayName
}

// ParticipantsListViewModel keeps the participants drawer rows.
type ParticipantsListViewModel struct {
	viewData ViewDataLookup

	mu           sync.RWMutex
	local        ParticipantsListCellViewModel
	participants []ParticipantsListCellViewModel
	lobby        []ParticipantsListCellViewModel
	lastStamp    time.Time
	lastRole     domain.ParticipantRole
}

func NewParticipantsListViewModel(local core.LocalUserState, viewData ViewDataLookup) *ParticipantsListViewModel {
	return &ParticipantsListViewModel{
		viewData: viewData,
		local:    localListCell(local),
		lastRole: local.ParticipantRole,
	}
}

// Update rebuilds the local row when it differs and the remote rows only
// when a new roster arrives or the local role changes.
func (l *ParticipantsListViewModel) Update(local core.LocalUserState, remote core.RemoteParticipantsState) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cell := localListCell(local); cell != l.local {
		l.local = cell
	}

	if remote.LastUpdateTimeStamp.Equal(l.lastStamp) && local.ParticipantRole == l.lastRole {
		return
	}
	l.lastStamp = remote.LastUpdateTimeStamp
	l.lastRole = local.ParticipantRole

	showLobby := canManageLobby(local.ParticipantRole)
	participants := make([]ParticipantsListCellViewModel, 0, len(remote.ParticipantInfoList))
	var lobby []ParticipantsListCellViewModel
	for _, p := range remote.ParticipantInfoList {
		switch p.Status {
		case domain.ParticipantStatusDisconnected:
		case domain.ParticipantStatusInLobby:
			if showLobby {
				lobby = append(lobby, remoteListCell(p))
			}
		default:
			participants = append(participants, remoteListCell(p))
		}
	}
	l.participants = participants
	l.lobby = lobby
}

func canManageLobby(role domain.ParticipantRole) bool {
	return role == domain.RoleOrganizer || role == domain.RolePresenter
}

func (l *ParticipantsListViewModel) LocalParticipant() ParticipantsListCellViewModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.local
}

func (l *ParticipantsListViewModel) Participants() []ParticipantsListCellViewModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.participants)
}

// LobbyParticipants is empty unless the local user may admit people.
func (l *ParticipantsListViewModel) LobbyParticipants() []ParticipantsListCellViewModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.lobby)
}

// SortedParticipants returns the local row first, then SortedRemote.
func (l *ParticipantsListViewModel) SortedParticipants() []ParticipantsListCellViewModel {
	local := l.LocalParticipant()
	return append([]ParticipantsListCellViewModel{local}, l.SortedRemote()...)
}

// SortedRemote orders the remote rows by display name, ignoring case.
// Display names are resolved with view data.
func (l *ParticipantsListViewModel) SortedRemote() []ParticipantsListCellViewModel {
	l.mu.RLock()
	defer l.mu.RUnlock()

	remote := make([]ParticipantsListCellViewModel, len(l.participants))
	for i, c := range l.participants {
		c.DisplayName = c.name(l.viewData)
		remote[i] = c
	}
	slices.SortStableFunc(remote, func(a, b ParticipantsListCellViewModel) int {
		return strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName))
	})
	return remote
}
