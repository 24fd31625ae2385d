package dataprocessing

// EDASummary holds the headline figures of a monster dataset
type EDASummary struct {
	TotalMonsters int     `json:"total_monsters"`
	TotalKills    float64 `json:"total_kills"`
	AvgReward     float64 `json:"avg_reward"`
}

// ColumnStats describes the present values of a numeric column. Std is the
// sample standard deviation and is zero when fewer than two values exist.
type ColumnStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// DatasetSummary describes the shape and content of any table
type DatasetSummary struct {
	Shape   [2]int                 `json:"shape"`
	Columns []string               `json:"columns"`
	DTypes  map[string]string      `json:"dtypes"`
	Missing map[string]int         `json:"missing"`
	Numeric map[string]ColumnStats `json:"numeric"`
}

// Rows returns the number of rows
func (s DatasetSummary) Rows() int { return s.Shape[0] }

// Cols returns the number of columns
func (s DatasetSummary) Cols() int { return s.Shape[1] }
