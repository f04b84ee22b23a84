// Package dataset reconstructs a tidy variant-level table from the
// irregular variants_raw worksheet layout: each task row is followed by a
// fixed number of variant sub-rows that inherit the task's Baustein
// composition.
package dataset

import "sort"

// Variant is one row of the tidy table: a single exam-task variant with
// its cluster (the task id), the task's Baustein count and composition,
// and the two binary outcomes.
type Variant struct {
	Variant    string
	Cluster    string
	NBausteine int
	Comp       int
	Pass       int
	Bausteine  map[string]int
}

// Table is the ordered variant-level dataset. BausteinCols preserves the
// worksheet's column order (B1, B2, ... as labeled, not re-sorted).
type Table struct {
	BausteinCols []string
	Variants     []Variant
}

// ClusterSizes returns the number of variants per cluster.
func (t *Table) ClusterSizes() map[string]int {
	sizes := make(map[string]int)
	for _, v := range t.Variants {
		sizes[v.Cluster]++
	}
	return sizes
}

// UnevenClusters returns the sorted cluster ids whose variant count
// differs from want. A non-empty result is the pipeline's only data
// quality warning.
func (t *Table) UnevenClusters(want int) []string {
	var uneven []string
	for cluster, n := range t.ClusterSizes() {
		if n != want {
			uneven = append(uneven, cluster)
		}
	}
	sort.Strings(uneven)
	return uneven
}

// Outcome selects one of the binary outcome columns as floats, in row
// order, for model fitting.
func (t *Table) Outcome(name string) []float64 {
	out := make([]float64, len(t.Variants))
	for i, v := range t.Variants {
		switch name {
		case "comp":
			out[i] = float64(v.Comp)
		case "pass":
			out[i] = float64(v.Pass)
		}
	}
	return out
}

// Predictor selects a predictor column as floats: either "n_bausteine" or
// one of the Baustein presence columns.
func (t *Table) Predictor(name string) []float64 {
	out := make([]float64, len(t.Variants))
	for i, v := range t.Variants {
		if name == "n_bausteine" {
			out[i] = float64(v.NBausteine)
		} else {
			out[i] = float64(v.Bausteine[name])
		}
	}
	return out
}

// Clusters returns the cluster id of every row, aligned with Outcome and
// Predictor.
func (t *Table) Clusters() []string {
	out := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		out[i] = v.Cluster
	}
	return out
}
