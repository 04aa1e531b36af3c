package application

import (
	"sync"

	"github.com/Apurer/pawmatch/internal/domains/dogs/domain"
)

// Results holds the page currently shown and the visitor's selection.
type Results struct {
	mu        sync.RWMutex
	page      domain.Page
	dogs      map[string]domain.Dog
	selection *domain.Selection
}

func NewResults() *Results {
	return &Results{
		page:      domain.EmptyPage(),
		dogs:      map[string]domain.Dog{},
		selection: domain.NewSelection(),
	}
}

// View is a consistent copy of Results.
type View struct {
	Page     domain.Page
	Dogs     []domain.Dog
	Selected []string
}

// Snapshot returns the shown dogs ordered by the page's result ids. Ids the
// detail fetch did not return are skipped.
func (r *Results) Snapshot() View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dogs := make([]domain.Dog, 0, len(r.page.ResultIDs))
	for _, id := range r.page.ResultIDs {
		if d, ok := r.dogs[id]; ok {
			dogs = append(dogs, d)
		}
	}
	page := r.page
	page.ResultIDs = append([]string{}, r.page.ResultIDs...)
	return View{Page: page, Dogs: dogs, Selected: r.selection.IDs()}
}

// Page returns the current page.
func (r *Results) Page() domain.Page {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.page
}

// Dog looks up a dog on the current page.
func (r *Results) Dog(id string) (domain.Dog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dogs[id]
	return d, ok
}

// ToggleSelection flips id and reports whether it is now selected.
func (r *Results) ToggleSelection(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selection.Toggle(id)
}

func (r *Results) ClearSelection() {
	r.mu.Lock()
	r.selection.Clear()
	r.mu.Unlock()
}

// SelectedIDs returns the selection in pick order.
func (r *Results) SelectedIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selection.IDs()
}

// RestoreSelection replaces the selection, e.g. from a persisted snapshot.
func (r *Results) RestoreSelection(ids []string) {
	r.mu.Lock()
	r.selection = domain.NewSelection(ids...)
	r.mu.Unlock()
}

func (r *Results) replace(page domain.Page, dogs []domain.Dog) {
	index := make(map[string]domain.Dog, len(dogs))
	for _, d := range dogs {
		index[d.ID] = d
	}
	if page.ResultIDs == nil {
		page.ResultIDs = []string{}
	}
	r.mu.Lock()
	r.page = page
	r.dogs = index
	r.mu.Unlock()
}

func (r *Results) clear() {
	r.replace(domain.EmptyPage(), nil)
}
