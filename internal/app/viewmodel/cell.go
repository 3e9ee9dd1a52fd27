// Package viewmodel derives presentation state from store snapshots. View
// models never mutate AppState; user intents are dispatched as actions.
package viewmodel

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

// ViewDataLookup resolves host-supplied presentation overrides.
type ViewDataLookup interface {
	ViewData(id string) (domain.ParticipantViewData, bool)
}

// Store is what view models need from *core.Store.
type Store interface {
	Dispatch(core.Action)
	State() core.AppState
	Subscribe(name string, fn func(core.Snapshot)) (cancel func())
}

// CellView is a copy of a grid cell's fields at one point in time.
type CellView struct {
	ID                    uuid.UUID              `json:"id"`
	ParticipantIdentifier string                 `json:"participantIdentifier"`
	DisplayName           string                 `json:"displayName"`
	AvatarURL             string                 `json:"avatarUrl,omitempty"`
	IsSpeaking            bool                   `json:"isSpeaking"`
	IsMuted               bool                   `json:"isMuted"`
	IsHold                bool                   `json:"isHold"`
	VideoStreamID         string                 `json:"videoStreamId,omitempty"`
	VideoStreamType       domain.MediaStreamType `json:"videoStreamType,omitempty"`
}

// ParticipantGridCellViewModel is one tile of the grid. Its ID is stable for
// as long as the cell is reused, whichever participant it currently shows.
type ParticipantGridCellViewModel struct {
	id       uuid.UUID
	viewData ViewDataLookup

	mu   sync.RWMutex
	view CellView
}

func newGridCell(model domain.ParticipantInfoModel, viewData ViewDataLookup) *ParticipantGridCellViewModel {
	c := &ParticipantGridCellViewModel{id: uuid.New(), viewData: viewData}
	c.Update(model)
	return c
}

func (c *ParticipantGridCellViewModel) ID() uuid.UUID { return c.id }

func (c *ParticipantGridCellViewModel) ParticipantIdentifier() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.ParticipantIdentifier
}

func (c *ParticipantGridCellViewModel) View() CellView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// Update refreshes the cell in place from the latest model.
func (c *ParticipantGridCellViewModel) Update(model domain.ParticipantInfoModel) {
	v := CellView{
		ID:                    c.id,
		ParticipantIdentifier: model.UserIdentifier,
		DisplayName:           model.DisplayName,
		IsSpeaking:            model.IsSpeaking,
		IsMuted:               model.IsMuted && model.Status == domain.ParticipantStatusConnected,
		IsHold:                model.Status == domain.ParticipantStatusHold,
	}
	if s := model.VideoStream(); s != nil {
		v.VideoStreamID = s.VideoStreamIdentifier
		v.VideoStreamType = s.MediaStreamType
	}
	if c.viewData != nil {
		if vd, ok := c.viewData.ViewData(model.UserIdentifier); ok {
			if name := strings.TrimSpace(vd.DisplayName); name != "" {
				v.DisplayName = name
			}
			v.AvatarURL = vd.AvatarURL
		}
	}

	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
}
