package attractor

// DelayEmbed builds the Takens delay embedding of a vector sequence:
// row i is the concatenation of m original vectors spaced tau apart,
// starting at i. With T input vectors the result has T-(m-1)*tau rows;
// a non-positive row count yields an empty sequence.
func DelayEmbed(series [][]float64, m, tau int) [][]float64 {
	rows := len(series) - (m-1)*tau
	if rows <= 0 {
		return nil
	}

	dim := 0
	for _, v := range series {
		if len(v) > dim {
			dim = len(v)
		}
	}

	delays := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, 0, m*dim)
		for k := 0; k < m; k++ {
			row = append(row, series[i+k*tau]...)
		}
		delays[i] = row
	}
	return delays
}
