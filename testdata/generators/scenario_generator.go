// Command scenario_generator writes fake sales order exports reproducing the
// discrepancies the salesrecon investigations look for.
//
//	go run ./testdata/generators -scenario all -output-dir generated -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"sales-reconciliation-tool/internal/testutil"
)

// ScenarioGenerator creates specific test scenarios
type ScenarioGenerator struct {
	Seed      int64
	Orders    int
	OutputDir string
}

func main() {
	var (
		outputDir = flag.String("output-dir", "generated_scenarios", "Output directory for scenario files")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
		orders    = flag.Int("orders", 200, "Orders per generated export")
		scenario  = flag.String("scenario", "all", "Scenario to generate: all, clean, skipped, zero-price, duplicate-items, missing-orders")
	)
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	generator := &ScenarioGenerator{
		Seed:      *seed,
		Orders:    *orders,
		OutputDir: *outputDir,
	}

	scenarios := map[string]func() error{
		"clean":           generator.GenerateClean,
		"skipped":         generator.GenerateSkippedPeriod,
		"zero-price":      generator.GenerateZeroPrice,
		"duplicate-items": generator.GenerateDuplicateItems,
		"missing-orders":  generator.GenerateMissingOrders,
	}

	var err error
	switch run, ok := scenarios[*scenario]; {
	case *scenario == "all":
		err = generator.GenerateAllScenarios()
	case ok:
		err = run()
	default:
		log.Fatalf("Unknown scenario: %s", *scenario)
	}
	if err != nil {
		log.Fatalf("Failed to generate %s: %v", *scenario, err)
	}

	fmt.Printf("Generated scenarios in %s\n", *outputDir)
	fmt.Printf("Seed used: %d\n", *seed)
}

// GenerateAllScenarios generates all predefined scenarios
func (sg *ScenarioGenerator) GenerateAllScenarios() error {
	for _, generate := range []func() error{
		sg.GenerateClean,
		sg.GenerateSkippedPeriod,
		sg.GenerateZeroPrice,
		sg.GenerateDuplicateItems,
		sg.GenerateMissingOrders,
	} {
		if err := generate(); err != nil {
			return err
		}
	}
	return nil
}

func (sg *ScenarioGenerator) generator() *testutil.Generator {
	return testutil.NewGenerator(sg.Seed)
}

func (sg *ScenarioGenerator) write(name string, rows []testutil.SalesRow) error {
	path, err := testutil.WriteCSVFile(sg.OutputDir, name, rows)
	if err != nil {
		return err
	}
	fmt.Printf("  %s: %d rows, %s\n", path, len(rows), testutil.FormatPrice(testutil.Total(rows)))
	return nil
}

// GenerateClean writes a December export without discrepancies
func (sg *ScenarioGenerator) GenerateClean() error {
	fmt.Println("Generating clean scenario...")
	gen := sg.generator()
	gen.ZeroPriceRate = 0
	return sg.write("clean.csv", gen.Orders(sg.Orders))
}

// GenerateSkippedPeriod labels every tenth order "January 0000", the period
// the import skips. Two of those orders also keep December line items.
func (sg *ScenarioGenerator) GenerateSkippedPeriod() error {
	fmt.Println("Generating skipped period scenario...")
	gen := sg.generator()

	var rows []testutil.SalesRow
	for i := 0; i < sg.Orders; i++ {
		order := gen.Order()
		if i%10 == 9 {
			for j := range order {
				if i%20 == 19 && j == 0 && len(order) > 1 {
					continue
				}
				order[j].YearMonth = "January 0000"
			}
		}
		rows = append(rows, order...)
	}
	return sg.write("skipped_period.csv", rows)
}

// GenerateZeroPrice writes an export where a quarter of the line items are $0
func (sg *ScenarioGenerator) GenerateZeroPrice() error {
	fmt.Println("Generating zero price scenario...")
	gen := sg.generator()
	gen.ZeroPriceRate = 0.25
	return sg.write("zero_price.csv", gen.Orders(sg.Orders))
}

// GenerateDuplicateItems repeats the line item id of every fifteenth row on
// the row that follows it
func (sg *ScenarioGenerator) GenerateDuplicateItems() error {
	fmt.Println("Generating duplicate line item scenario...")
	rows := sg.generator().Orders(sg.Orders)
	for i := 14; i+1 < len(rows); i += 15 {
		rows[i+1].LineItemID = rows[i].LineItemID
	}
	return sg.write("duplicate_items.csv", rows)
}

// GenerateMissingOrders writes one salesperson's own export and a
// year-to-date export missing some of that salesperson's orders
func (sg *ScenarioGenerator) GenerateMissingOrders() error {
	fmt.Println("Generating missing orders scenario...")
	gen := sg.generator()
	rows := gen.Orders(sg.Orders)
	person := gen.SalesPeople[0]

	var reference, candidate []testutil.SalesRow
	missing := make(map[int64]bool)
	missingRevenue := decimal.Zero
	seen := 0
	for _, row := range rows {
		if row.SalesPerson == person {
			reference = append(reference, row)
			if _, counted := missing[row.OrderNumber]; !counted {
				missing[row.OrderNumber] = seen%7 == 3
				seen++
			}
			if missing[row.OrderNumber] {
				missingRevenue = missingRevenue.Add(row.TotalPrice)
				continue
			}
		}
		candidate = append(candidate, row)
	}

	if err := sg.write(fmt.Sprintf("%s_reference.csv", person), reference); err != nil {
		return err
	}
	if err := sg.write("ytd_candidate.csv", candidate); err != nil {
		return err
	}
	fmt.Printf("  expected missing revenue for %s: %s\n", person, testutil.FormatPrice(missingRevenue))
	fmt.Printf("  compare with: salesrecon compare --reference %s --candidate %s --sales-person %s\n",
		filepath.Join(sg.OutputDir, person+"_reference.csv"), filepath.Join(sg.OutputDir, "ytd_candidate.csv"), person)
	return nil
}
