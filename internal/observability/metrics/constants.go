// Package metrics defines the Prometheus collectors exported by a build run.
package metrics

// Stage names used as the stage label of stage duration metrics.
const (
	// StageLoad covers reading the positive pairs and the universe.
	StageLoad = "load"
	// StageSample covers host sampling, capping and negative sampling.
	StageSample = "sample"
	// StageWrite covers writing the dataset and its side outputs.
	StageWrite = "write"
	// StageLedger covers recording the run in the ledger.
	StageLedger = "ledger"
)

// Operation names and outcomes used by RecordOperation and RecordError.
const (
	OperationBuild = "build"
	StatusSuccess  = "success"
	StatusError    = "error"
)

// Label values of the rows metric.
const (
	LabelPositive = "1"
	LabelNegative = "0"
)

const namespace = "phagepairs"
