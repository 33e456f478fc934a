package pointcloud

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPointCloudBasic(t *testing.T) {
	pc := New()
	test.That(t, pc.Size(), test.ShouldEqual, 0)

	p0 := r3.Vector{X: 1, Y: 2, Z: 3}
	test.That(t, pc.Set(p0, NewBasicData()), test.ShouldBeNil)
	d, got := pc.At(1, 2, 3)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d.HasValue(), test.ShouldBeFalse)
	test.That(t, pc.MetaData().HasValue, test.ShouldBeFalse)

	_, got = pc.At(1, 1, 1)
	test.That(t, got, test.ShouldBeFalse)

	p1 := r3.Vector{X: -1, Y: 5, Z: 0.5}
	test.That(t, pc.Set(p1, NewValueData(7)), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)
	test.That(t, pc.MetaData().HasValue, test.ShouldBeTrue)

	// same position replaces the data.
	test.That(t, pc.Set(p1, NewValueData(9)), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)
	d, got = pc.At(-1, 5, 0.5)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d.Value(), test.ShouldEqual, 9)

	meta := pc.MetaData()
	test.That(t, meta.MinX, test.ShouldEqual, -1.)
	test.That(t, meta.MaxX, test.ShouldEqual, 1.)
	test.That(t, meta.MinY, test.ShouldEqual, 2.)
	test.That(t, meta.MaxY, test.ShouldEqual, 5.)
	test.That(t, meta.MinZ, test.ShouldEqual, 0.5)
	test.That(t, meta.MaxZ, test.ShouldEqual, 3.)
	test.That(t, meta.Center(), test.ShouldResemble, r3.Vector{X: 0, Y: 3.5, Z: 1.75})

	err := pc.Set(r3.Vector{X: math.NaN()}, NewBasicData())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)

	// append keeps both points at a position, At reports the first.
	test.That(t, pc.Append(p1, NewValueData(11)), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 3)
	d, got = pc.At(-1, 5, 0.5)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d.Value(), test.ShouldEqual, 9)
	test.That(t, pc.Append(r3.Vector{Z: math.Inf(1)}, NewBasicData()), test.ShouldNotBeNil)
}

func TestIterate(t *testing.T) {
	points := []r3.Vector{}
	for i := 0; i < 10; i++ {
		points = append(points, r3.Vector{X: float64(i), Y: 1, Z: 2})
	}
	pc, err := NewFromPoints(points, nil)
	test.That(t, err, test.ShouldBeNil)

	// insertion order is kept.
	seen := []r3.Vector{}
	pc.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		seen = append(seen, p)
		return true
	})
	test.That(t, seen, test.ShouldResemble, points)

	count := 0
	for batch := 0; batch < 3; batch++ {
		pc.Iterate(3, batch, func(p r3.Vector, d Data) bool {
			count++
			return true
		})
	}
	test.That(t, count, test.ShouldEqual, 10)

	count = 0
	pc.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		count++
		return count < 4
	})
	test.That(t, count, test.ShouldEqual, 4)
}

func TestNewFromPoints(t *testing.T) {
	points := []r3.Vector{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 2}}
	pc, err := NewFromPoints(points, []int{4, 9})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)
	d, got := pc.At(1, 0, 2)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d.Value(), test.ShouldEqual, 9)

	// coinciding points are all kept with their own values.
	pc, err = NewFromPoints([]r3.Vector{points[0], points[1], points[0]}, []int{4, 9, 12})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 3)
	values := []int{}
	pc.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		values = append(values, d.Value())
		return true
	})
	test.That(t, values, test.ShouldResemble, []int{4, 9, 12})
	d, got = pc.At(0, 0, 1)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d.Value(), test.ShouldEqual, 4)

	_, err = NewFromPoints(points, []int{1})
	test.That(t, err, test.ShouldNotBeNil)
}
