package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
)

// Supported subcommands:
// - schema:   Print the per-algorithm field schema
// - validate: Decode and validate an instance file
// - matrix:   Fetch a road distance matrix and write it into an instance
// - path:     Energy-aware shortest path between two nodes

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := runSubcommand(ctx, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSubcommand(ctx context.Context, name string, args []string, w io.Writer) error {
	switch name {
	case "schema":
		return handleSchema(args, w)
	case "validate":
		return handleValidate(args, w)
	case "matrix":
		return handleMatrix(ctx, args, w)
	case "path":
		return handlePath(ctx, args, w)
	case "help", "-h", "--help":
		printUsage(w)

		return nil
	default:
		printUsage(os.Stderr)

		return errors.Errorf("unknown subcommand %q", name)
	}
}

func handleSchema(args []string, w io.Writer) error {
	cmd := flag.NewFlagSet("schema", flag.ContinueOnError)
	format := cmd.String("format", "json", "Output format: json or yaml")
	algorithm := cmd.String("algorithm", "", "Only print this algorithm")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse schema flags")
	}

	return runSchema(w, *format, *algorithm)
}

func handleValidate(args []string, w io.Writer) error {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	input := cmd.String("input", "", "Instance file path")
	consumption := cmd.Float64("consumption", 0, "Energy per distance unit (default: solver.consumptionRate)")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse validate flags")
	}
	if *input == "" {
		return errors.New("--input flag is required for validate command")
	}

	return runValidate(w, *input, *consumption)
}

func handleMatrix(ctx context.Context, args []string, w io.Writer) error {
	cmd := flag.NewFlagSet("matrix", flag.ContinueOnError)
	input := cmd.String("input", "", "Instance file path")
	output := cmd.String("output", "", "Output instance path (default: stdout)")
	osrmURL := cmd.String("osrm", os.Getenv("OSRM_URL"), "OSRM base URL (default: $OSRM_URL)")
	profile := cmd.String("profile", "driving", "OSRM routing profile")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse matrix flags")
	}
	if *input == "" {
		return errors.New("--input flag is required for matrix command")
	}

	return runMatrix(ctx, w, matrixOptions{
		input:   *input,
		output:  *output,
		baseURL: *osrmURL,
		profile: *profile,
	})
}

func handlePath(ctx context.Context, args []string, w io.Writer) error {
	cmd := flag.NewFlagSet("path", flag.ContinueOnError)
	input := cmd.String("input", "", "Instance file path")
	start := cmd.Int("start", -1, "Start node id (default: start_id, else the first node)")
	end := cmd.Int("end", -1, "End node id (default: end_id, else the last node)")
	consumption := cmd.Float64("consumption", 0, "Energy per distance unit (default: solver.consumptionRate)")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse path flags")
	}
	if *input == "" {
		return errors.New("--input flag is required for path command")
	}

	return runPath(ctx, w, pathOptions{
		input:       *input,
		start:       *start,
		end:         *end,
		consumption: *consumption,
	})
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: evtool <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  schema      Print the fields each algorithm accepts")
	fmt.Fprintln(w, "  validate    Decode and validate an instance file")
	fmt.Fprintln(w, "  matrix      Fetch an OSRM distance matrix into an instance")
	fmt.Fprintln(w, "  path        Energy-aware shortest path between two nodes")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Use 'evtool <command> -h' for more information about a command.")
}
