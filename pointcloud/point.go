package pointcloud

import (
	"github.com/golang/geo/r3"
)

// Data describes data associated single point within a PointCloud.
type Data interface {
	// HasValue returns whether or not this point has some user data value
	// associated with it.
	HasValue() bool

	// Value returns the user data set value, if it exists.
	Value() int

	// SetValue sets the given user data value on the point.
	SetValue(v int) Data
}

type basicData struct {
	hasValue bool
	value    int
}

// NewBasicData returns a point that has no value.
func NewBasicData() Data {
	return &basicData{}
}

// NewValueData returns a point that has the given value.
func NewValueData(v int) Data {
	return &basicData{hasValue: true, value: v}
}

func (bp *basicData) SetValue(v int) Data {
	bp.value = v
	bp.hasValue = true
	return bp
}

func (bp *basicData) HasValue() bool {
	return bp.hasValue
}

func (bp *basicData) Value() int {
	return bp.value
}

// PointAndData is a tiny struct to facilitate returning nearest neighbors in a neat way.
type PointAndData struct {
	P r3.Vector
	D Data
}
