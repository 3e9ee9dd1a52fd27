package viewmodel

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

type GridLayout string

const (
	GridCompact GridLayout = "compact"
	GridRegular GridLayout = "regular"
)

// GridCapacity is the number of tiles a layout can show.
func GridCapacity(l GridLayout) int {
	if l == GridRegular {
		return 9
	}
	return 6
}

// ParticipantGridViewModel maps the unordered roster onto a bounded, stable
// tile order. Tiles keep their slot when one participant replaces another.
type ParticipantGridViewModel struct {
	capacity int
	viewData ViewDataLookup

	mu           sync.RWMutex
	lastStamp    time.Time
	displayed    []domain.ParticipantInfoModel
	cells        []*ParticipantGridCellViewModel
	gridsCount   int
	onGridsCount func(int)
	onAnnounce   func(string)
}

func NewParticipantGridViewModel(layout GridLayout, viewData ViewDataLookup) *ParticipantGridViewModel {
	return &ParticipantGridViewModel{capacity: GridCapacity(layout), viewData: viewData}
}

// OnGridsCountChanged registers fn to be called with the new tile count.
func (g *ParticipantGridViewModel) OnGridsCountChanged(fn func(int)) {
	g.mu.Lock()
	g.onGridsCount = fn
	g.mu.Unlock()
}

// OnAnnouncement registers fn for "joined"/"left" announcements, sent only
// while the call is connected.
func (g *ParticipantGridViewModel) OnAnnouncement(fn func(string)) {
	g.mu.Lock()
	g.onAnnounce = fn
	g.mu.Unlock()
}

// Update reconciles a roster snapshot. A roster carrying an already seen
// stamp is ignored even when its contents differ.
func (g *ParticipantGridViewModel) Update(calling core.CallingState, remote core.RemoteParticipantsState) {
	g.mu.Lock()
	if remote.LastUpdateTimeStamp.Equal(g.lastStamp) {
		g.mu.Unlock()
		return
	}
	g.lastStamp = remote.LastUpdateTimeStamp

	selected := selectDisplayed(visible(remote.ParticipantInfoList), g.capacity)
	ordered, removed, added := reorder(g.displayed, selected)
	g.updateCells(ordered)
	g.displayed = ordered

	var countChanged func(int)
	if g.gridsCount != len(ordered) {
		g.gridsCount = len(ordered)
		countChanged = g.onGridsCount
	}
	var announce []string
	if calling.Status == domain.CallingStatusConnected && g.onAnnounce != nil {
		announce = announcements(removed, added)
	}
	onAnnounce, count := g.onAnnounce, g.gridsCount
	g.mu.Unlock()

	for _, msg := range announce {
		onAnnounce(msg)
	}
	if countChanged != nil {
		countChanged(count)
	}
}

// visible drops participants waiting in the lobby or already gone.
func visible(roster []domain.ParticipantInfoModel) []domain.ParticipantInfoModel {
	return slices.DeleteFunc(slices.Clone(roster), func(p domain.ParticipantInfoModel) bool {
		return p.Status == domain.ParticipantStatusInLobby || p.Status == domain.ParticipantStatusDisconnected
	})
}

// selectDisplayed picks what to show: a screen sharer alone, everyone when
// they fit, else the most recent speakers.
func selectDisplayed(roster []domain.ParticipantInfoModel, capacity int) []domain.ParticipantInfoModel {
	if i := slices.IndexFunc(roster, domain.ParticipantInfoModel.IsScreenSharing); i >= 0 {
		return []domain.ParticipantInfoModel{roster[i]}
	}
	if len(roster) <= capacity {
		return slices.Clone(roster)
	}
	sorted := slices.Clone(roster)
	slices.SortStableFunc(sorted, func(a, b domain.ParticipantInfoModel) int {
		return b.RecentSpeakingStamp.Compare(a.RecentSpeakingStamp)
	})
	return sorted[:capacity]
}

// reorder keeps previous positions when as many participants left as
// joined. Removed and added are paired by enumeration order only.
func reorder(prev, next []domain.ParticipantInfoModel) (ordered, removed, added []domain.ParticipantInfoModel) {
	removed = missingFrom(prev, next)
	added = missingFrom(next, prev)
	if len(removed) != len(added) {
		return next, removed, added
	}

	ordered = slices.Clone(prev)
	replaced := make(map[int]bool, len(removed))
	for i, r := range removed {
		if at := indexOf(ordered, r.UserIdentifier); at >= 0 {
			ordered[at] = added[i]
			replaced[at] = true
		}
	}
	for i, p := range ordered {
		if replaced[i] {
			continue
		}
		if at := indexOf(next, p.UserIdentifier); at >= 0 {
			ordered[i] = next[at]
		}
	}
	return ordered, removed, added
}

// missingFrom returns the entries of a whose identifier is not in b.
func missingFrom(a, b []domain.ParticipantInfoModel) []domain.ParticipantInfoModel {
	var out []domain.ParticipantInfoModel
	for _, p := range a {
		if indexOf(b, p.UserIdentifier) < 0 {
			out = append(out, p)
		}
	}
	return out
}

func indexOf(list []domain.ParticipantInfoModel, id string) int {
	return slices.IndexFunc(list, func(p domain.ParticipantInfoModel) bool { return p.UserIdentifier == id })
}

// updateCells refreshes tiles positionally when the count is unchanged and
// otherwise rebuilds the list, reusing tiles by participant.
func (g *ParticipantGridViewModel) updateCells(models []domain.ParticipantInfoModel) {
	if len(g.cells) == len(models) {
		for i, m := range models {
			g.cells[i].Update(m)
		}
		return
	}
	cells := make([]*ParticipantGridCellViewModel, 0, len(models))
	for _, m := range models {
		i := slices.IndexFunc(g.cells, func(c *ParticipantGridCellViewModel) bool {
			return c.ParticipantIdentifier() == m.UserIdentifier
		})
		if i >= 0 {
			g.cells[i].Update(m)
			cells = append(cells, g.cells[i])
			continue
		}
		cells = append(cells, newGridCell(m, g.viewData))
	}
	g.cells = cells
}

func announcements(removed, added []domain.ParticipantInfoModel) []string {
	var out []string
	switch len(removed) {
	case 0:
	case 1:
		out = append(out, fmt.Sprintf("%s left the meeting", removed[0].DisplayName))
	default:
		out = append(out, fmt.Sprintf("%d participants left the meeting", len(removed)))
	}
	switch len(added) {
	case 0:
	case 1:
		out = append(out, fmt.Sprintf("%s joined the meeting", added[0].DisplayName))
	default:
		out = append(out, fmt.Sprintf("%d participants joined the meeting", len(added)))
	}
	return out
}

func (g *ParticipantGridViewModel) Displayed() []domain.ParticipantInfoModel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.displayed)
}

func (g *ParticipantGridViewModel) Cells() []*ParticipantGridCellViewModel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.cells)
}

// Views returns a copy of every tile, in display order.
func (g *ParticipantGridViewModel) Views() []CellView {
	cells := g.Cells()
	out := make([]CellView, len(cells))
	for i, c := range cells {
		out[i] = c.View()
	}
	return out
}

func (g *ParticipantGridViewModel) GridsCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.gridsCount
}
