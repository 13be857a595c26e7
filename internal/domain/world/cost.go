package world

// CostClass is the traversal class derived from a tile type.
type CostClass int

const (
	CostNormal CostClass = iota
	CostPenalized
	CostImpassable
	CostUnexplored
)

func (c CostClass) String() string {
	switch c {
	case CostNormal:
		return "normal"
	case CostPenalized:
		return "penalized"
	case CostImpassable:
		return "impassable"
	case CostUnexplored:
		return "unexplored"
	default:
		return "unknown"
	}
}

// CostModel maps tile types to traversal weights. Tile types absent from the
// weight map default to weight 1. Several types may share one weight: tiles
// are grouped into cost tiers, not priced per type.
type CostModel struct {
	weights    map[TileType]int
	impassable map[TileType]bool
}

func NewCostModel(weights map[TileType]int, impassable []TileType) CostModel {
	m := CostModel{
		weights:    make(map[TileType]int, len(weights)),
		impassable: make(map[TileType]bool, len(impassable)),
	}
	for t, w := range weights {
		if w < 1 {
			w = 1
		}
		m.weights[t] = w
	}
	for _, t := range impassable {
		m.impassable[t] = true
	}
	return m
}

// CostOf classifies a tile type. known=false means the coordinate is not in
// the grid; that is a class of its own, never impassable and never free.
func (m CostModel) CostOf(t TileType, known bool) CostClass {
	if !known {
		return CostUnexplored
	}
	if m.impassable[t] {
		return CostImpassable
	}
	if m.weights[t] > 1 {
		return CostPenalized
	}
	return CostNormal
}

// Weight returns the traversal weight of a known tile type, or ok=false when
// the type is impassable.
func (m CostModel) Weight(t TileType) (int, bool) {
	if m.impassable[t] {
		return 0, false
	}
	if w, ok := m.weights[t]; ok {
		return w, true
	}
	return 1, true
}
