// Package dataprocessing loads monster hunting datasets and provides the
// transformations and aggregations run over them.
//
// Every function takes a *domain.Table and returns a new table, a scalar
// or a map. Inputs are never modified, so calls compose freely:
//
//	t, err := dataprocessing.LoadFile("data/witcher_monsters.csv")
//	if err != nil {
//	    return err
//	}
//	t, err = dataprocessing.CleanMissing(t)
//	...
//	byRegion, err := dataprocessing.KillsByRegion(t)
//
// # Data Flow
//
//	File → LoadFile → CleanMissing → EncodeDifficulty / AddRewardPerKill →
//	KillsByRegion, Summarize, ... → FilterRare / NormalizeKills
//
// # Error Handling
//
// Errors are *errors.AppError values:
//
//   - LOAD when a file cannot be opened
//   - PARSING when its content is malformed
//   - SCHEMA when a referenced column is absent
//   - COMPUTATION when a statistic or ratio is undefined
//
// # Edge Cases
//
// Missing cells are Null. Ratios with a zero divisor follow a
// ZeroDivisionPolicy, a constant column normalizes to zeros, and sampling
// is deterministic unless SamplingOptions carries a seed.
package dataprocessing
