package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/kamstrup/intmap"

	"github.com/plus3/orrery/ecs"
)

type EntityInfo struct {
	ID   ecs.EntityId
	Name string
	Mask ecs.KindMask
}

// EntityBrowser lists live entities with filtering, sorting and paging. The
// row cache is rebuilt when the entity count or any component mask changes.
type EntityBrowser struct {
	// Names labels entities, typically with scene body names.
	Names func(ecs.EntityId) string

	entities      []EntityInfo
	masks         *intmap.Map[ecs.EntityId, ecs.KindMask]
	sortColumn    int
	sortAscending bool

	selected    ecs.EntityId
	filterText  string
	perPage     int
	currentPage int
}

func NewEntityBrowser(perPage int) *EntityBrowser {
	return &EntityBrowser{
		masks:         intmap.New[ecs.EntityId, ecs.KindMask](64),
		sortAscending: true,
		perPage:       max(perPage, 1),
	}
}

func (eb *EntityBrowser) Render(frame *ecs.UpdateFrame) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.Refresh(frame.Storage)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
	}

	filtered := eb.Filtered()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Name")
		imgui.TableSetupColumn("Components")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.SortBy(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
			filtered = eb.Filtered()
		}

		start := min(eb.currentPage*eb.perPage, len(filtered))
		end := min(start+eb.perPage, len(filtered))
		for _, entity := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(entity.ID.String(), eb.selected == entity.ID, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = entity.ID
			}
			imgui.TableNextColumn()
			imgui.Text(entity.Name)
			imgui.TableNextColumn()
			imgui.Text(entity.Mask.String())
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.perPage {
		totalPages := (len(filtered) + eb.perPage - 1) / eb.perPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		eb.currentPage = 0
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

// Refresh rebuilds the row cache if the storage changed since the last call.
// A selected entity that no longer exists is deselected.
func (eb *EntityBrowser) Refresh(storage *ecs.Storage) {
	if eb.selected != 0 && !storage.Alive(eb.selected) {
		eb.selected = 0
	}
	if !eb.stale(storage) {
		return
	}

	eb.masks.Clear()
	eb.entities = eb.entities[:0]
	for id, set := range storage.Iter() {
		mask := set.Mask()
		eb.masks.Put(id, mask)
		info := EntityInfo{ID: id, Mask: mask}
		if eb.Names != nil {
			info.Name = eb.Names(id)
		}
		eb.entities = append(eb.entities, info)
	}
	eb.sort()
}

func (eb *EntityBrowser) stale(storage *ecs.Storage) bool {
	if eb.masks.Len() != storage.Len() {
		return true
	}
	for id, set := range storage.Iter() {
		mask, ok := eb.masks.Get(id)
		if !ok || mask != set.Mask() {
			return true
		}
	}
	return false
}

// SortBy orders rows by column: 0 entity id, 1 name, 2 component set.
func (eb *EntityBrowser) SortBy(column int, ascending bool) {
	eb.sortColumn = column
	eb.sortAscending = ascending
	eb.sort()
}

func (eb *EntityBrowser) sort() {
	sort.SliceStable(eb.entities, func(i, j int) bool {
		a, b := eb.entities[i], eb.entities[j]
		var less bool
		switch eb.sortColumn {
		case 1:
			less = a.Name < b.Name
		case 2:
			less = a.Mask < b.Mask
		default:
			less = a.ID < b.ID
		}
		if !eb.sortAscending {
			return !less
		}
		return less
	})
}

// SetFilter sets the search text. Rows match on id, name or component names,
// case-insensitively.
func (eb *EntityBrowser) SetFilter(text string) {
	eb.filterText = text
	eb.currentPage = 0
}

func (eb *EntityBrowser) Filtered() []EntityInfo {
	if eb.filterText == "" {
		return eb.entities
	}

	needle := strings.ToLower(eb.filterText)
	filtered := make([]EntityInfo, 0, len(eb.entities))
	for _, entity := range eb.entities {
		if strings.Contains(entity.ID.String(), needle) ||
			strings.Contains(strings.ToLower(entity.Name), needle) ||
			strings.Contains(strings.ToLower(entity.Mask.String()), needle) {
			filtered = append(filtered, entity)
		}
	}
	return filtered
}

func (eb *EntityBrowser) Selected() ecs.EntityId {
	return eb.selected
}

func (eb *EntityBrowser) Select(id ecs.EntityId) {
	eb.selected = id
}
