package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	"github.com/k0kubun/sqligit/export"
	"github.com/k0kubun/sqligit/importer"
	"github.com/k0kubun/sqligit/schema"
	"github.com/k0kubun/sqligit/sqligitlog"
)

var version string

var operations = []string{"dump", "load"}

type options struct {
	Verbose bool `short:"v" long:"verbose" description:"Print extracted schema and per-bucket debug logs"`
	Version bool `long:"version" description:"Show this version"`
	Help    bool `long:"help" description:"Show this help"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[option...] dump db_path output_dir | load input_dir db_path"

	args, err := parser.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	sqligitlog.Init(opts.Verbose)

	if len(args) == 0 {
		fmt.Print("No operation is specified!\n\n")
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}

	operation := args[0]
	rest := args[1:]

	switch operation {
	case "dump":
		runDump(rest, opts.Verbose)
	case "load":
		runLoad(rest)
	default:
		fmt.Printf("Unknown operation: %s\n", operation)
		if suggestion := suggestOperation(operation); suggestion != "" {
			fmt.Printf("Did you mean %q?\n\n", suggestion)
		}
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}
}

func runDump(args []string, verbose bool) {
	if len(args) != 2 {
		fmt.Println("dump requires exactly two arguments: db_path output_dir")
		os.Exit(1)
	}
	dbPath, outputDir := args[0], args[1]

	if verbose {
		printSchema(dbPath)
	}

	if err := export.Export(dbPath, outputDir); err != nil {
		log.Fatal(err)
	}
}

func runLoad(args []string) {
	if len(args) != 2 {
		fmt.Println("load requires exactly two arguments: input_dir db_path")
		os.Exit(1)
	}
	inputDir, dbPath := args[0], args[1]

	if err := importer.Import(inputDir, dbPath); err != nil {
		log.Fatal(err)
	}
}

func printSchema(dbPath string) {
	db, err := schema.OpenReadOnly(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	sch, err := schema.Extract(db)
	if err != nil {
		log.Fatal(err)
	}
	pp.Println(sch)
}

// suggestOperation finds the closest known operation name by edit
// distance, for a "did you mean" hint on typos. No pack example ships a
// fuzzy-matching library, so this is a small hand-rolled Levenshtein.
func suggestOperation(got string) string {
	best := ""
	bestDistance := -1
	for _, op := range operations {
		d := levenshtein(got, op)
		if bestDistance == -1 || d < bestDistance {
			bestDistance = d
			best = op
		}
	}
	if bestDistance >= 0 && bestDistance <= len(best)/2+1 {
		return best
	}
	return ""
}

func levenshtein(a, b string) int {
	ra, rb := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
