package scoring

// Efficiency averages the subfactors. Without written workload the written
// subfactor is dropped from the average rather than counted as zero.
func Efficiency(oralPlusHearing, guarantees, written float64, hasWritten bool) float64 {
	if hasWritten {
		return (oralPlusHearing + guarantees + written) / 3
	}
	return (oralPlusHearing + guarantees) / 2
}
