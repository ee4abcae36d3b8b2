package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"pricebench/adapters/excel"
	"pricebench/domain/core"
	"pricebench/domain/pricing"
)

// evaluate reads a quotation spreadsheet and prints the engine's verdict for
// each row, the data-quality problems and the computed aggregates
func main() {
	file := flag.String("file", "", "quotation spreadsheet (.xlsx)")
	excess := flag.Int("excess", 25, "excessively-high threshold in percent")
	inexequible := flag.Int("inexequible", 75, "inexequibility threshold in percent")
	places := flag.Int("places", 2, "monetary decimal places (clamped to [0,7])")
	nbr := flag.Bool("nbr", true, "use NBR 5891 half-to-even rounding")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: cli -file quotations.xlsx [-excess N] [-inexequible N] [-places N] [-nbr=false]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error reading file:", err)
		os.Exit(1)
	}

	imported, err := excel.NewQuotationImporter().ImportQuotations(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error importing quotations:", err)
		os.Exit(1)
	}

	quotations := make([]pricing.Quotation, 0, len(imported))
	for i, q := range imported {
		kind, err := pricing.ParseSourceKind(q.SourceKind)
		if err != nil {
			fmt.Fprintf(os.Stderr, "row %d (%s): %v\n", i+1, q.SourceName, err)
			os.Exit(2)
		}
		quotations = append(quotations, pricing.Quotation{
			SourceName: q.SourceName,
			SourceKind: kind,
			Locator:    q.Locator,
			Price:      q.Price,
		})
	}

	cfg := pricing.EvaluationConfig{
		ExcessThresholdPct:      *excess,
		InexequibleThresholdPct: *inexequible,
		DecimalPlaces:           core.ClampDecimalPlaces(*places),
		UseNBRRounding:          *nbr,
	}
	result := pricing.NewEngine().Evaluate(quotations, cfg)

	printClassification(result)
	printProblems(result)
	printAggregates(result)
}

func printClassification(result pricing.EvaluationResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tKIND\tPRICE\tSTATUS\tNOTE")
	for _, c := range result.Classified {
		price := "-"
		if c.Price != nil {
			price = fmt.Sprintf("%.2f", *c.Price)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.SourceName, c.SourceKind, price, c.Status, c.Note)
	}
	w.Flush()
}

func printProblems(result pricing.EvaluationResult) {
	if len(result.Problems) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Problems:")
	for _, p := range result.Problems {
		fmt.Println("  -", p)
	}
}

func printAggregates(result pricing.EvaluationResult) {
	agg := result.Aggregates
	if agg == nil {
		return
	}
	fmt.Println()
	fmt.Printf("Valid prices:        %d\n", result.ValidCount())
	fmt.Printf("Mean:                %.4f\n", agg.Mean)
	fmt.Printf("Median:              %.4f\n", agg.Median)
	fmt.Printf("Std deviation:       %.4f\n", agg.StdDev)
	fmt.Printf("Coeff. of variation: %.2f%%\n", agg.CoefficientOfVariationPct)
	fmt.Printf("Suggested method:    %s\n", agg.SuggestedMethod)
	fmt.Printf("Market price:        %.2f\n", agg.MarketPrice)
}
