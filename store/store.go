package store

import (
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/op/go-logging"

	"github.com/spektr-org/orderlens/engine"
	"github.com/spektr-org/orderlens/schema"
)

var log = logging.MustGetLogger("store")

// Store is the read-only Record Store. Orders are kept sorted by purchase
// time so a date range is a contiguous index range; each category label
// owns a bitmap of its row indices. Nothing in the store changes after New.
type Store struct {
	orders     []Order
	view       engine.RecordView
	categories map[string]*roaring.Bitmap
	labels     []string
	columns    schema.Mapping
}

// New takes ownership of a copy of orders. columns lists the canonical keys
// the source files carried; nil means every column is available.
func New(orders []Order, columns []string) *Store {
	sorted := make([]Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PurchasedAt.Before(sorted[j].PurchasedAt)
	})

	s := &Store{
		orders:     sorted,
		view:       View(sorted),
		categories: make(map[string]*roaring.Bitmap),
		columns:    make(schema.Mapping),
	}

	if columns == nil {
		for _, c := range schema.OrderColumns {
			columns = append(columns, c.Key)
		}
	}
	for i, key := range columns {
		s.columns[key] = i
	}

	for i, o := range sorted {
		bm, ok := s.categories[o.Category]
		if !ok {
			bm = roaring.New()
			s.categories[o.Category] = bm
			s.labels = append(s.labels, o.Category)
		}
		bm.Add(uint32(i))
	}
	sort.Strings(s.labels)

	for _, bm := range s.categories {
		bm.RunOptimize()
	}

	log.Debugf("store: %d rows, %d categories", len(sorted), len(s.labels))
	return s
}

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.orders) }

// View exposes every row as a RecordView.
func (s *Store) View() engine.RecordView { return s.view }

// Order returns row i.
func (s *Store) Order(i int) Order { return s.orders[i] }

// Categories returns the sorted distinct category labels.
func (s *Store) Categories() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Bounds returns the first and last purchase day. ok is false for an empty
// store.
func (s *Store) Bounds() (first, last time.Time, ok bool) {
	if len(s.orders) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return engine.Day(s.orders[0].PurchasedAt), engine.Day(s.orders[len(s.orders)-1].PurchasedAt), true
}

// Available reports whether the source files carried column key.
func (s *Store) Available(key string) bool {
	if key == schema.KeyCategory && s.columns.Has(schema.KeyCategoryPT) {
		return true
	}
	return s.columns.Has(key)
}

// Unavailable lists the reports the loaded columns cannot feed.
func (s *Store) Unavailable() []string { return s.columns.Unavailable() }

// Select returns the bitmap of rows purchased on a day in [from, to]
// (inclusive, zero = open) whose category is one of categories (empty =
// any). The returned bitmap is owned by the caller.
func (s *Store) Select(from, to time.Time, categories []string) *roaring.Bitmap {
	lo, hi := s.dayRange(from, to)
	selected := roaring.New()
	if lo < hi {
		selected.AddRange(uint64(lo), uint64(hi))
	}

	if len(categories) == 0 {
		return selected
	}

	matching := make([]*roaring.Bitmap, 0, len(categories))
	for _, c := range categories {
		if bm, ok := s.categories[c]; ok {
			matching = append(matching, bm)
		}
	}
	if len(matching) == 0 {
		return roaring.New()
	}
	selected.And(roaring.FastOr(matching...))
	return selected
}

// Subset exposes the rows set in bm as a RecordView.
func (s *Store) Subset(bm *roaring.Bitmap) engine.RecordView {
	return engine.NewBitmapView(s.view, bm)
}

// dayRange maps a day range onto [lo, hi) row indices.
func (s *Store) dayRange(from, to time.Time) (int, int) {
	from, to = engine.Day(from), engine.Day(to)
	n := len(s.orders)

	lo := 0
	if !from.IsZero() {
		lo = sort.Search(n, func(i int) bool {
			return !engine.Day(s.orders[i].PurchasedAt).Before(from)
		})
	}
	hi := n
	if !to.IsZero() {
		hi = sort.Search(n, func(i int) bool {
			return engine.Day(s.orders[i].PurchasedAt).After(to)
		})
	}
	return lo, hi
}
