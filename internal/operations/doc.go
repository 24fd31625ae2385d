// Package operations runs named table transformations as a pipeline.
//
// A Registry holds the available steps by id. NewDefaultRegistry
// registers the built-in steps, each backed by a dataprocessing function:
//
//	clean_missing, encode_difficulty, add_reward_per_kill, filter_rare,
//	normalize_kills, standardize_rewards, label_encode, one_hot_encode,
//	down_sample, up_sample
//
// A Pipeline resolves a list of StepSpec values against the registry,
// validates their parameters up front and then applies them in order.
// Each Step gets a StepState (pending, active, completed, failed), a
// log line, a span and a metrics sample. The first failure aborts the
// run and no partial table is returned.
//
// Example usage:
//
//	registry := operations.NewDefaultRegistry(dataprocessing.DefaultOptions())
//	pipeline := operations.NewPipeline(registry, operations.WithLogger(logger))
//
//	result, err := pipeline.Run(ctx, table, []operations.StepSpec{
//		{ID: operations.StepIDCleanMissing},
//		{ID: operations.StepIDLabelEncode, Params: operations.Params{"column": "region"}},
//	})
package operations
