// Package transform holds the pinhole camera model and the planar transforms applied to image
// points before geometric estimation.
package transform

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"
)

// ErrNoIntrinsics is when a camera does not have intrinsics parameters or other parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intriniscs are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// PinholeCameraIntrinsics holds the parameters necessary to do a perspective projection of a 3D scene to the 2D plane.
// Width and Height are optional; zero means the image bounds are unknown.
type PinholeCameraIntrinsics struct {
	Width  int     `json:"width_px,omitempty"`
	Height int     `json:"height_px,omitempty"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
}

// NewPinholeCameraIntrinsics returns intrinsics with the given focal lengths and principal point.
func NewPinholeCameraIntrinsics(fx, fy, ppx, ppy float64) *PinholeCameraIntrinsics {
	return &PinholeCameraIntrinsics{Fx: fx, Fy: fy, Ppx: ppx, Ppy: ppy}
}

// CheckValid checks if the fields for PinholeCameraIntrinsics have valid inputs.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("Intrinsics do not exist")
	}
	if params.Width < 0 || params.Height < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", params.Width, params.Height))
	}
	if !(params.Fx > 0) {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fx = %#v", params.Fx))
	}
	if !(params.Fy > 0) {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fy = %#v", params.Fy))
	}
	if params.Ppx < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal X point Ppx = %#v", params.Ppx))
	}
	if params.Ppy < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal Y point Ppy = %#v", params.Ppy))
	}
	return nil
}

// NewPinholeCameraIntrinsicsFromJSONFile takes in a file path to a JSON and turns it into PinholeCameraIntrinsics.
func NewPinholeCameraIntrinsicsFromJSONFile(jsonPath string) (*PinholeCameraIntrinsics, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening JSON file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON data")
	}
	intrinsics := &PinholeCameraIntrinsics{}
	if err := json.Unmarshal(byteValue, intrinsics); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON string")
	}
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	return intrinsics, nil
}

// GetCameraMatrix creates a new camera matrix and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *PinholeCameraIntrinsics) GetCameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Ppx)
	cameraMatrix.Set(1, 2, params.Ppy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}

// PointToPixel projects a 3D point in the camera frame onto the image plane. Unlike a raster
// lookup, the pixel is not rounded. Points on the camera plane (z == 0) cannot be projected.
func (params *PinholeCameraIntrinsics) PointToPixel(pt r3.Vector) (r2.Point, error) {
	if pt.Z == 0 {
		return r2.Point{}, errors.Errorf("cannot project point %v with zero depth", pt)
	}
	return r2.Point{
		X: (pt.X/pt.Z)*params.Fx + params.Ppx,
		Y: (pt.Y/pt.Z)*params.Fy + params.Ppy,
	}, nil
}

// PixelToRay returns the direction, with unit depth, of the ray through the pixel.
func (params *PinholeCameraIntrinsics) PixelToRay(px r2.Point) r3.Vector {
	return r3.Vector{
		X: (px.X - params.Ppx) / params.Fx,
		Y: (px.Y - params.Ppy) / params.Fy,
		Z: 1,
	}
}

// InBounds reports whether the pixel lies inside the image. It is always true when the image
// size is unknown.
func (params *PinholeCameraIntrinsics) InBounds(px r2.Point) bool {
	if params.Width == 0 || params.Height == 0 {
		return true
	}
	return px.X >= 0 && px.Y >= 0 && px.X < float64(params.Width) && px.Y < float64(params.Height)
}
