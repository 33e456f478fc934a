package pointcloud

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/twoview/utils"
)

// basicPointCloud is the basic implementation of the PointCloud interface backed by
// a slice of points and an index keyed by position.
type basicPointCloud struct {
	points   []PointAndData
	indexMap map[r3.Vector]int
	meta     MetaData
}

// New returns an empty PointCloud backed by a basicPointCloud.
func New() PointCloud {
	return NewWithPrealloc(0)
}

// NewWithPrealloc returns an empty, preallocated PointCloud backed by a basicPointCloud.
func NewWithPrealloc(size int) PointCloud {
	return &basicPointCloud{
		points:   make([]PointAndData, 0, size),
		indexMap: make(map[r3.Vector]int, size),
		meta:     NewMetaData(),
	}
}

// NewFromPoints builds a cloud from reconstructed points. When indices is not nil, indices[i] is
// stored as the value of points[i]. Every point is kept, so the cloud has len(points) points even
// when two of them coincide.
func NewFromPoints(points []r3.Vector, indices []int) (PointCloud, error) {
	if indices != nil && len(indices) != len(points) {
		return nil, errors.Errorf("got %d points but %d indices", len(points), len(indices))
	}
	cloud := NewWithPrealloc(len(points))
	for i, pt := range points {
		d := NewBasicData()
		if indices != nil {
			d = NewValueData(indices[i])
		}
		if err := cloud.Append(pt, d); err != nil {
			return nil, err
		}
	}
	return cloud, nil
}

func (cloud *basicPointCloud) Size() int {
	return len(cloud.points)
}

func (cloud *basicPointCloud) MetaData() MetaData {
	return cloud.meta
}

func (cloud *basicPointCloud) At(x, y, z float64) (Data, bool) {
	idx, ok := cloud.indexMap[r3.Vector{X: x, Y: y, Z: z}]
	if !ok {
		return nil, false
	}
	return cloud.points[idx].D, true
}

// Set validates that the point is finite before setting it in the cloud.
func (cloud *basicPointCloud) Set(p r3.Vector, d Data) error {
	if !utils.VectorIsFinite(p) {
		return errors.Errorf("cannot store non-finite point %v", p)
	}
	if idx, ok := cloud.indexMap[p]; ok {
		cloud.points[idx].D = d
		if d != nil && d.HasValue() {
			cloud.meta.HasValue = true
		}
		return nil
	}
	return cloud.Append(p, d)
}

func (cloud *basicPointCloud) Append(p r3.Vector, d Data) error {
	if !utils.VectorIsFinite(p) {
		return errors.Errorf("cannot store non-finite point %v", p)
	}
	if _, ok := cloud.indexMap[p]; !ok {
		cloud.indexMap[p] = len(cloud.points)
	}
	cloud.points = append(cloud.points, PointAndData{P: p, D: d})
	cloud.meta.Merge(p, d)
	return nil
}

func (cloud *basicPointCloud) Iterate(numBatches, myBatch int, fn func(p r3.Vector, d Data) bool) {
	lowerBound := 0
	upperBound := len(cloud.points)
	if numBatches > 0 {
		batchSize := (len(cloud.points) + numBatches - 1) / numBatches
		lowerBound = myBatch * batchSize
		upperBound = (myBatch + 1) * batchSize
	}
	if upperBound > len(cloud.points) {
		upperBound = len(cloud.points)
	}
	for i := lowerBound; i < upperBound; i++ {
		if !fn(cloud.points[i].P, cloud.points[i].D) {
			return
		}
	}
}
