// Package shared holds helpers used across huntstats packages.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and the monster/character fixtures shared by package tests:
//
//	logger, logs := testutil.NewTestLogger(t)
//	table := testutil.MonsterTable()
//	path := testutil.WriteFile(t, "monsters.csv", testutil.MonsterCSV)
package shared
