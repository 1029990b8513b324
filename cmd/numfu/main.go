package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/errors"
	"github.com/sunholo/numfu/internal/eval"
	"github.com/sunholo/numfu/internal/interp"
	"github.com/sunholo/numfu/internal/parser"
	"github.com/sunholo/numfu/internal/repl"
)

var (
	// Version info - set by ldflags during build
	Version = "dev"

	// Color output
	red  = color.New(color.FgRed).SprintFunc()
	cyan = color.New(color.FgCyan).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		precision   = flag.Int("precision", 15, "Decimal digits used by number operations")
		recDepth    = flag.Int("rec-depth", 10000, "Maximum host recursion depth during evaluation")
		iterDepth   = flag.Int("iter-depth", 0, "Maximum tail-call iterations (0 = unbounded)")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("NumFu %s\n", bold(Version))
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	opts := eval.Options{Precision: *precision, RecDepth: *recDepth, IterDepth: *iterDepth}

	switch flag.Arg(0) {
	case "repl":
		if flag.NArg() >= 2 && flag.Arg(1) == "ast" {
			runASTREPL()
			return
		}
		runREPL(opts)

	case "parse":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: numfu parse <file.nfu> [-o out] [-p]")
			os.Exit(1)
		}
		os.Exit(runParse(flag.Args()[1:]))

	default:
		// `numfu <source>` runs the file directly.
		os.Exit(runFile(flag.Arg(0), opts))
	}
}

func printHelp() {
	fmt.Println(bold("NumFu - arbitrary-precision functional arithmetic"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  numfu [flags] <source.nfu>")
	fmt.Println("  numfu [flags] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <file>   Parse a file and save or pretty-print its AST\n", cyan("parse"))
	fmt.Printf("  %s           Start the interactive REPL\n", cyan("repl"))
	fmt.Printf("  %s       Start the interactive parse-tree REPL\n", cyan("repl ast"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --precision N    Decimal digits used by number operations (default 15)")
	fmt.Println("  --rec-depth N    Maximum recursion depth (default 10000)")
	fmt.Println("  --iter-depth N   Maximum tail-call iterations (default unbounded)")
	fmt.Println("  --version        Print version information")
}

func runFile(path string, opts eval.Options) int {
	if !strings.HasSuffix(path, ".nfu") && !strings.HasSuffix(path, ".nfut") {
		fmt.Fprintf(os.Stderr, "%s: expected a .nfu source or .nfut tree file\n", red("Warning"))
	}
	in, err := interp.New(opts, true, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 1
	}
	return in.RunFile(path)
}

func runREPL(opts eval.Options) {
	in, err := interp.New(opts, false, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	r := repl.New(os.Stdout)
	r.Start("", func(code string) {
		in.RunSource(code, "REPL")
	})
}

func runASTREPL() {
	r := repl.New(os.Stdout)
	r.Start(fmt.Sprintf("%s AST REPL. Type 'exit' or press Ctrl+D to exit.", bold("NumFu")), func(code string) {
		tree, err := parser.Parse(code, "REPL")
		if err != nil {
			if rep, ok := errors.As(err); ok {
				fmt.Fprint(os.Stderr, errors.Render(rep))
				return
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return
		}
		fmt.Println(ast.Pretty(tree, 10, 2))
	})
}

func runParse(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	pretty := fs.Bool("p", false, "Pretty print the AST instead of saving it")
	output := fs.String("o", "", "Output file path for the saved parse tree")
	maxDepth := fs.Int("max-depth", 10, "Maximum depth of the AST to display")
	indent := fs.Int("indent", 2, "Indentation size for AST pretty print")
	// Accept `parse <file> -p` as well as `parse -p <file>`.
	var path string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		path = args[0]
		_ = fs.Parse(args[1:])
	} else {
		_ = fs.Parse(args)
		if fs.NArg() < 1 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			return 1
		}
		path = fs.Arg(0)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read file '%s': %v\n", red("Error"), path, err)
		return 1
	}

	tree, err := parser.Parse(string(data), path)
	if err != nil {
		if rep, ok := errors.As(err); ok {
			fmt.Fprint(os.Stderr, errors.Render(rep))
			return 1
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 1
	}

	if *pretty {
		fmt.Println(ast.Pretty(tree, *maxDepth, *indent))
		return 0
	}

	out := *output
	if out == "" {
		out = strings.TrimSuffix(path, ".nfu") + ".nfut"
	}
	if err := parser.SaveTree(out, tree); err != nil {
		fmt.Fprintf(os.Stderr, "%s: saving parsed file: %v\n", red("Error"), err)
		return 1
	}
	fmt.Printf("Parsed file saved to %s\n", out)
	return 0
}
