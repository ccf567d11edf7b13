package source

import (
	"fmt"
	"math/rand"
	"strconv"

	"chandana/internal/domain"
)

var (
	syntheticDistricts = []string{"Raipur", "durg", "BASTAR", " Bilaspur", "Korba", "Rajnandgaon", ""}
	syntheticGenders   = []string{"M", "F", "Male", "female", "NA", ""}
	syntheticResults   = []string{"HbAA", "HbAS", "HbSS", "", ""}
	syntheticStatus    = []string{"Done", "Pending"}
)

// SyntheticHPLC generates a laboratory table with the expected layout. The
// output depends only on rows and seed.
func SyntheticHPLC(rows int, seed int64) domain.Table {
	rng := rand.New(rand.NewSource(seed))
	t := domain.Table{Header: append([]string(nil), domain.HPLCColumns...)}
	for i := 0; i < rows; i++ {
		age := strconv.Itoa(rng.Intn(60) + 1)
		switch rng.Intn(10) {
		case 0:
			age += " yrs"
		case 1:
			age += "YRS"
		case 2:
			age = "unknown"
		}
		t.Rows = append(t.Rows, []domain.Cell{
			domain.NewCell(strconv.Itoa(i + 1)),
			domain.NewCell(fmt.Sprintf("SCD-%05d", rng.Intn(100000))),
			domain.NewCell(age),
			domain.NewCell(syntheticGenders[rng.Intn(len(syntheticGenders))]),
			domain.NewCell(syntheticDistricts[rng.Intn(len(syntheticDistricts))]),
			domain.NewCell(syntheticResults[rng.Intn(len(syntheticResults))]),
			domain.NewCell(syntheticStatus[rng.Intn(len(syntheticStatus))]),
		})
	}
	return t
}

// SyntheticHPOS generates device ratios scattered around the control band,
// with a small share of unreadable values.
func SyntheticHPOS(rows int, seed int64) domain.Table {
	rng := rand.New(rand.NewSource(seed + 1))
	t := domain.Table{Header: []string{"sampleId", domain.ColDeviceRatio}}
	for i := 0; i < rows; i++ {
		ratio := strconv.FormatFloat(0.40+rng.NormFloat64()*0.03, 'f', 4, 64)
		if rng.Intn(20) == 0 {
			ratio = "ERR"
		}
		t.Rows = append(t.Rows, []domain.Cell{
			domain.NewCell(fmt.Sprintf("HPOS-%04d", i+1)),
			domain.NewCell(ratio),
		})
	}
	return t
}
