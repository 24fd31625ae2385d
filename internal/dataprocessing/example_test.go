package dataprocessing_test

import (
	"fmt"
	"strings"

	"huntstats/internal/dataprocessing"
	"huntstats/internal/shared/testutil"
)

func Example() {
	t, err := dataprocessing.LoadCSV(strings.NewReader(testutil.MonsterCSV))
	if err != nil {
		fmt.Println(err)
		return
	}

	kills, _ := dataprocessing.KillsByRegion(t)
	rewards, _ := dataprocessing.AvgRewardByRegion(t)
	name, _ := dataprocessing.MostDangerousMonster(t)

	fmt.Println(kills)
	fmt.Println(rewards)
	fmt.Println(name)
	// Output:
	// map[Novigrad:12 Velen:5]
	// map[Novigrad:115 Velen:300]
	// Drowner
}

func ExampleFilterRare() {
	t, _ := dataprocessing.LoadCSV(strings.NewReader(testutil.MonsterCSV))

	rare, _ := dataprocessing.FilterRare(t, 3)
	fmt.Println(rare.Records())
	// Output:
	// [[Leshen Novigrad 2 Medium 150]]
}
