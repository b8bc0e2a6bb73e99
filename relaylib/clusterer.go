package relaylib

import (
	"math"

	"github.com/juju/errors"
)

// DefaultDistance is a default maximal distance between neighbour
// points, in degrees.
const DefaultDistance = 1.5

type gridCell struct {
	x int64
	y int64
}

type disjointSet struct {
	parent []int
	rank   []int
}

func (d *disjointSet) find(idx int) int {
	for d.parent[idx] != idx {
		d.parent[idx] = d.parent[d.parent[idx]]
		idx = d.parent[idx]
	}

	return idx
}

func (d *disjointSet) union(left, right int) {
	left = d.find(left)
	right = d.find(right)

	switch {
	case left == right:
	case d.rank[left] < d.rank[right]:
		d.parent[left] = right
	case d.rank[left] > d.rank[right]:
		d.parent[right] = left
	default:
		d.parent[right] = left
		d.rank[left]++
	}
}

func newDisjointSet(size int) *disjointSet {
	rv := &disjointSet{
		parent: make([]int, size),
		rank:   make([]int, size),
	}

	for i := range rv.parent {
		rv.parent[i] = i
	}

	return rv
}

type clusterAccumulator struct {
	longitude float64
	latitude  float64
	weight    uint64
	size      int
}

func (c *clusterAccumulator) add(point WeightedPoint) {
	c.longitude += point.Longitude
	c.latitude += point.Latitude
	c.weight += point.Weight
	c.size++
}

func (c *clusterAccumulator) cluster(mode Mode) Cluster {
	rv := Cluster{
		Center: GeoPoint{
			Longitude: c.longitude / float64(c.size),
			Latitude:  c.latitude / float64(c.size),
		},
		Size:  c.size,
		Value: uint64(c.size),
	}

	if mode == ModeWeight {
		rv.Value = c.weight
	}

	return rv
}

// Clusterize groups points into connected components of a graph where
// points are linked if distance between them is not greater than
// distance. Every point belongs to exactly one cluster, a point without
// neighbours is a cluster on its own. Weights do not affect grouping.
//
// Clusters are ordered by their first member in points.
func Clusterize(points []WeightedPoint, distance float64, mode Mode) (ClusterSet, error) {
	rv := ClusterSet{}

	if err := validateDistance(distance); err != nil {
		return rv, err
	}

	if len(points) == 0 {
		return rv, ErrNoPoints
	}

	set := linkPoints(points, distance)
	accumulators := []clusterAccumulator{}
	rootToIndex := map[int]int{}

	for i, v := range points {
		root := set.find(i)

		idx, ok := rootToIndex[root]
		if !ok {
			idx = len(accumulators)
			rootToIndex[root] = idx
			accumulators = append(accumulators, clusterAccumulator{})
		}

		accumulators[idx].add(v)
	}

	rv.Clusters = make([]Cluster, 0, len(accumulators))
	rv.Min = math.MaxUint64

	for i := range accumulators {
		cluster := accumulators[i].cluster(mode)

		if cluster.Value < rv.Min {
			rv.Min = cluster.Value
		}
		if cluster.Value > rv.Max {
			rv.Max = cluster.Value
		}

		rv.Clusters = append(rv.Clusters, cluster)
	}

	return rv, nil
}

// linkPoints puts points into a grid with cells of distance size. Points
// can be reachable only from the same or adjacent cells.
func linkPoints(points []WeightedPoint, distance float64) *disjointSet {
	set := newDisjointSet(len(points))
	grid := map[gridCell][]int{}

	for i, v := range points {
		cell := gridCell{
			x: int64(math.Floor(v.Longitude / distance)),
			y: int64(math.Floor(v.Latitude / distance)),
		}

		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for _, j := range grid[gridCell{cell.x + dx, cell.y + dy}] {
					if reachable(v, points[j], distance) {
						set.union(i, j)
					}
				}
			}
		}

		grid[cell] = append(grid[cell], i)
	}

	return set
}

func validateDistance(distance float64) error {
	if !(distance > 0) || math.IsInf(distance, 0) {
		return errors.Annotatef(ErrIncorrectDistance, "Distance %v", distance)
	}

	return nil
}

func reachable(left, right WeightedPoint, distance float64) bool {
	return math.Hypot(left.Longitude-right.Longitude, left.Latitude-right.Latitude) <= distance
}
