package layer

// #region evaluate
// Evaluate is the unlock decision table. It is total: every valid id and
// non-negative metric combination yields exactly one status. Ids outside
// 1..15 have no threshold row and resolve to Unformed.
func Evaluate(id ID, density, convergence int, stability float64) Status {
	if !id.Valid() {
		return Unformed
	}
	row := Thresholds[id]
	switch {
	case density >= row.DensityMin && convergence >= row.ConvergenceMin:
		switch {
		case stability >= IntegratedStability:
			return Integrated
		case stability >= DevelopedStability:
			return Developed
		default:
			return Emerging
		}
	case density >= 1:
		return Emerging
	default:
		return Unformed
	}
}

// #endregion evaluate
