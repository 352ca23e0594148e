package handlers

import (
	"sort"

	"github.com/Daanveer10/medcAIr/models"
)

// bookedIndex is a single pass over the scheduled appointments for a batch of
// slots: which slot ids are held, and by whom.
type bookedIndex struct {
	held     map[string]bool
	bookedBy map[string]string
}

func buildBookedIndex(appointments []models.Appointment) bookedIndex {
	idx := bookedIndex{
		held:     make(map[string]bool, len(appointments)),
		bookedBy: make(map[string]string, len(appointments)),
	}
	for _, a := range appointments {
		if a.SlotID == nil {
			continue
		}
		idx.held[*a.SlotID] = true
		idx.bookedBy[*a.SlotID] = a.PatientName
	}
	return idx
}

// annotateSlots derives the availability view for each slot. A slot is free
// only when its stored flag is true AND no scheduled appointment holds it;
// a stored false flag is never overridden, since appointments can disappear
// without going through the release path.
func annotateSlots(slots []models.Slot, idx bookedIndex) []models.SlotView {
	views := make([]models.SlotView, 0, len(slots))
	for _, s := range slots {
		view := models.SlotView{
			Slot:        s,
			IsAvailable: s.IsAvailable && !idx.held[s.ID],
		}
		if name, ok := idx.bookedBy[s.ID]; ok {
			bookedBy := name
			view.BookedBy = &bookedBy
		}
		views = append(views, view)
	}
	return views
}

// groupSlotsByDate partitions the views by date, preserving the chronological
// order the slice already carries.
func groupSlotsByDate(views []models.SlotView) map[string][]models.SlotView {
	grouped := make(map[string][]models.SlotView)
	for _, v := range views {
		grouped[v.Date] = append(grouped[v.Date], v)
	}
	return grouped
}

// sortSlots orders slots by date then time. The store already orders by
// date; this pins the intra-day order as well.
func sortSlots(slots []models.Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].Time < slots[j].Time
	})
}
