package table

import "fmt"

// ErrShapeMismatch indicates that the raw arena length disagrees with the
// declared table shape.
type ErrShapeMismatch struct {
	Shape Shape5
	Len   int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: shape %s wants %d cells, arena has %d", e.Shape, e.Shape.Cells(), e.Len)
}

// ErrFeatureCountMismatch indicates that the reduced-feature matrix does not
// have one row per unmasked training bin. This is always fatal; truncating
// would silently mis-assign every following bin.
type ErrFeatureCountMismatch struct {
	Rows     int
	Unmasked int
}

func (e *ErrFeatureCountMismatch) Error() string {
	return fmt.Sprintf("feature count mismatch: %d feature rows for %d unmasked bins", e.Rows, e.Unmasked)
}
