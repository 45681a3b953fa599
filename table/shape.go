package table

import "fmt"

// Shape5 describes the 5-D photon table layout: three spatial-time axes
// (r, theta, t) followed by the two photon-direction axes
// (theta_dir, deltaphi_dir). The arena is row-major over all five axes.
type Shape5 struct {
	R           int
	Theta       int
	T           int
	ThetaDir    int
	DeltaPhiDir int
}

// Shape3 is the spatial-time prefix of a Shape5.
type Shape3 struct {
	R     int
	Theta int
	T     int
}

// Spatial returns the spatial-time prefix.
func (s Shape5) Spatial() Shape3 {
	return Shape3{R: s.R, Theta: s.Theta, T: s.T}
}

// SpatialBins returns the number of spatial-time bins.
func (s Shape5) SpatialBins() int {
	return s.R * s.Theta * s.T
}

// AngularCells returns the number of cells in one angular map.
func (s Shape5) AngularCells() int {
	return s.ThetaDir * s.DeltaPhiDir
}

// Cells returns the total number of cells in the 5-D table.
func (s Shape5) Cells() int {
	return s.SpatialBins() * s.AngularCells()
}

// Valid reports whether every axis has positive extent.
func (s Shape5) Valid() bool {
	return s.R > 0 && s.Theta > 0 && s.T > 0 && s.ThetaDir > 0 && s.DeltaPhiDir > 0
}

func (s Shape5) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d,%d)", s.R, s.Theta, s.T, s.ThetaDir, s.DeltaPhiDir)
}

// Bins returns the number of spatial-time bins.
func (s Shape3) Bins() int {
	return s.R * s.Theta * s.T
}

func (s Shape3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.R, s.Theta, s.T)
}
