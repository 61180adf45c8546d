package topk

import "sort"

const DefaultK = 10

// Scored pairs an entity with its score (trip count or revenue).
type Scored[ID comparable] struct {
	ID    ID      `json:"id"`
	Score float64 `json:"score"`
}

// Route is an ordered (pickup zone, dropoff zone) pair.
type Route struct {
	PickupID  int64 `json:"pickup_location_id"`
	DropoffID int64 `json:"dropoff_location_id"`
}

// FromMap materialises m as entries ordered by less, so that repeated calls
// over the same map see the same encounter order.
func FromMap[ID comparable](m map[ID]float64, less func(a, b ID) bool) []Scored[ID] {
	ids := make([]ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return less(ids[i], ids[j]) })

	entries := make([]Scored[ID], 0, len(ids))
	for _, id := range ids {
		entries = append(entries, Scored[ID]{ID: id, Score: m[id]})
	}
	return entries
}

// SelectTopK returns the k highest-scored entries in descending score order.
// entries must hold unique ids. The relative order of tied scores is whatever
// the final partition sort leaves; callers must not rely on it.
//
// The input slice is not modified.
func SelectTopK[ID comparable](entries []Scored[ID], k int) []Scored[ID] {
	if k <= 0 || len(entries) == 0 {
		return []Scored[ID]{}
	}

	var top []Scored[ID]
	if len(entries) <= k {
		top = make([]Scored[ID], len(entries))
		copy(top, entries)
	} else {
		top = boundedTop(entries, k)
	}

	quicksortDesc(top, 0, len(top)-1)
	return top
}

// boundedTop keeps the k largest entries in a min-heap of capacity k.
func boundedTop[ID comparable](entries []Scored[ID], k int) []Scored[ID] {
	heap := make([]Scored[ID], k)
	copy(heap, entries[:k])
	buildMinHeap(heap)

	for _, e := range entries[k:] {
		if e.Score > heap[0].Score {
			heap[0] = e
			siftDown(heap, 0)
		}
	}
	return heap
}

func buildMinHeap[ID comparable](h []Scored[ID]) {
	for i := len(h)/2 - 1; i >= 0; i-- {
		siftDown(h, i)
	}
}

func siftDown[ID comparable](h []Scored[ID], idx int) {
	n := len(h)
	for {
		smallest := idx
		left := 2*idx + 1
		right := 2*idx + 2

		if left < n && h[left].Score < h[smallest].Score {
			smallest = left
		}
		if right < n && h[right].Score < h[smallest].Score {
			smallest = right
		}
		if smallest == idx {
			return
		}
		h[idx], h[smallest] = h[smallest], h[idx]
		idx = smallest
	}
}

func quicksortDesc[ID comparable](a []Scored[ID], low, high int) {
	if low < high {
		p := partitionDesc(a, low, high)
		quicksortDesc(a, low, p-1)
		quicksortDesc(a, p+1, high)
	}
}

// Lomuto partition with the last element as pivot; larger scores go left.
func partitionDesc[ID comparable](a []Scored[ID], low, high int) int {
	pivot := a[high].Score
	i := low - 1
	for j := low; j < high; j++ {
		if a[j].Score > pivot {
			i++
			a[i], a[j] = a[j], a[i]
		}
	}
	a[i+1], a[high] = a[high], a[i+1]
	return i + 1
}

// Selector carries a default K for the zone and route variants.
type Selector struct {
	k int
}

func NewSelector(k int) *Selector {
	return &Selector{k: k}
}

func (s *Selector) K() int {
	return s.k
}

// TopPickups ranks zones by pickup count.
func (s *Selector) TopPickups(counts []Scored[int64]) []Scored[int64] {
	return SelectTopK(counts, s.k)
}

// TopDropoffs ranks zones by dropoff count.
func (s *Selector) TopDropoffs(counts []Scored[int64]) []Scored[int64] {
	return SelectTopK(counts, s.k)
}

// TopByRevenue ranks zones by summed fare.
func (s *Selector) TopByRevenue(revenue []Scored[int64]) []Scored[int64] {
	return SelectTopK(revenue, s.k)
}

// TopRoutes ranks pickup/dropoff pairs by trip count. k == 0 uses the
// selector default.
func (s *Selector) TopRoutes(counts []Scored[Route], k int) []Scored[Route] {
	if k == 0 {
		k = s.k
	}
	return SelectTopK(counts, k)
}

// RouteLess orders routes by pickup then dropoff id.
func RouteLess(a, b Route) bool {
	if a.PickupID != b.PickupID {
		return a.PickupID < b.PickupID
	}
	return a.DropoffID < b.DropoffID
}
