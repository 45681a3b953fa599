package phototab_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"gonum.org/v1/gonum/mat"

	"github.com/phototab/phototab"
	"github.com/phototab/phototab/artifact"
	"github.com/phototab/phototab/blobstore"
	"github.com/phototab/phototab/table"
)

// Example_run demonstrates one full compression run over an in-memory store.
func Example_run() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	// A toy 2x2 spatial grid with a 3x3 angular histogram per bin.
	shape := table.Shape5{R: 2, Theta: 2, T: 1, ThetaDir: 3, DeltaPhiDir: 3}
	arena := make([]float32, shape.Cells())
	arena[0] = 2000   // bin 0 peaks in cell 0
	arena[9+4] = 2000 // bin 1 peaks in cell 4

	var buf bytes.Buffer
	if err := artifact.WriteTable5D(&buf, shape, arena); err != nil {
		log.Fatal(err)
	}
	store.Put(ctx, "table5d.ptc", buf.Bytes())

	// One reduced-feature row per training bin.
	buf.Reset()
	features := mat.NewDense(2, 2, []float64{0, 0, 10, 10})
	if err := artifact.WriteFeatures(&buf, features); err != nil {
		log.Fatal(err)
	}
	store.Put(ctx, "features.ptc", buf.Bytes())

	// Precomputed centroids pin template 0 to the first population.
	buf.Reset()
	centroids := mat.NewDense(2, 2, []float64{0, 0, 10, 10})
	if err := artifact.WriteFeatures(&buf, centroids); err != nil {
		log.Fatal(err)
	}
	store.Put(ctx, "centroids.ptc", buf.Bytes())

	p := phototab.New(
		phototab.WithLogger(phototab.NoopLogger()),
		phototab.WithMaskThreshold(1000),
	)
	stats, err := p.Run(ctx, store, phototab.InputNames{
		Table:     "table5d.ptc",
		Features:  "features.ptc",
		Centroids: "centroids.ptc",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Bins: %d, Templates: %d\n", stats.Bins, stats.Clusters)

	var index []uint16
	err = artifact.Load(ctx, store, "recmap.ptc", func(r io.Reader) error {
		_, i, _, err := artifact.ReadRecords(r)
		index = i
		return err
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Indices: %v\n", index)
	// Output:
	// Bins: 4, Templates: 2
	// Indices: [0 1 0 0]
}
