// Package kmeans implements seeded k-means clustering for codebook training.
//
// Used internally by the codebook builder to assign reduced-feature rows to
// template clusters when no precomputed centroid matrix is supplied.
package kmeans
