package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"huntstats/pkg/contracts/domain"
)

// MonsterCSV is the three-row monster sample used across packages
const MonsterCSV = `monster_name,region,kills,difficulty,reward
Griffin,Velen,5,Hard,300
Leshen,Novigrad,2,Medium,150
Drowner,Novigrad,10,Easy,80
`

// CharacterCSV is a small character roster with an imbalanced monster flag
const CharacterCSV = `name,character_class,region,is_monster
Geralt,Witcher,Rivia,0
Yennefer,Sorceress,Vengerberg,0
Triss,Sorceress,Maribor,0
Dandelion,Bard,Oxenfurt,0
Imlerith,Wild Hunt,Tir na Lia,1
`

// MonsterTable returns the monster sample as a table
func MonsterTable() *domain.Table {
	return domain.MustTable(domain.MonsterColumns,
		[]any{"Griffin", "Velen", 5, "Hard", 300},
		[]any{"Leshen", "Novigrad", 2, "Medium", 150},
		[]any{"Drowner", "Novigrad", 10, "Easy", 80},
	)
}

// CharacterTable returns the character sample as a table
func CharacterTable() *domain.Table {
	return domain.MustTable(domain.CharacterColumns,
		[]any{"Geralt", "Witcher", "Rivia", 0},
		[]any{"Yennefer", "Sorceress", "Vengerberg", 0},
		[]any{"Triss", "Sorceress", "Maribor", 0},
		[]any{"Dandelion", "Bard", "Oxenfurt", 0},
		[]any{"Imlerith", "Wild Hunt", "Tir na Lia", 1},
	)
}

// WriteFile writes content under a fresh temp dir and returns its path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
