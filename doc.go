// Package phototab compresses 5-D photon-count lookup tables by vector
// quantization: it learns a small codebook of canonical angular
// photon-distribution templates and replaces each spatial-time bin's full
// angular map with a (template index, total count) pair, trading a controlled
// amount of reconstruction error for orders-of-magnitude storage reduction.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("./run17")
//
//	p := phototab.New(
//	    phototab.WithClusters(4000),
//	    phototab.WithSeed(1),
//	    phototab.WithMaskThreshold(1000),
//	)
//	stats, err := p.Run(ctx, store, phototab.InputNames{
//	    Table:    "table5d.ptc.zst",
//	    Features: "features.ptc",
//	})
//
// The run reads the raw table and the externally produced reduced-feature
// matrix, trains the codebook on high-statistics bins, quantizes every bin
// under a chi-squared metric and persists three artifacts: the template
// codebook, the per-bin {index, weight} record table and the per-bin chi2
// diagnostic table. Decompression is a single lookup:
//
//	approx := cb.Reconstruct(index[bin], weight[bin])
//
// A precomputed centroid matrix can replace internal k-means training via
// InputNames.Centroids; see codebook.Clusterer for the pluggable clustering
// contract.
package phototab
