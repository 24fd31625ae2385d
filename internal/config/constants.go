package config

// Application info
const (
	AppName    = "huntstats"
	AppVersion = "0.3.0"
)

// File names written by the batch report
const (
	CleanedDatasetFile = "monsters_clean.csv"
	EncodedDatasetFile = "monsters_encoded.xlsx"
	RareDatasetFile    = "monsters_rare.csv"
	SummaryFile        = "summary.json"
)
