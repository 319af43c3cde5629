// Command acisplot loads ACIS tracelogs, commanded states and thermal
// model outputs and plots, summarises or exports their fields. It also
// manages the local state-code database and resolves load review names.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/acisops/acispy/internal/monitoring"
	"github.com/acisops/acispy/internal/version"
)

// errUsage marks errors already reported by a flag set.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("acisplot: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("acisplot", flag.ContinueOnError)
	global.SetOutput(stderr)
	quiet := global.Bool("quiet", false, "Suppress diagnostic logging")
	global.Usage = func() { printUsage(stderr) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if *quiet {
		monitoring.SetLogger(nil)
	} else {
		monitoring.SetLogger(log.New(stderr, "", log.LstdFlags).Printf)
	}

	if global.NArg() < 1 {
		printUsage(stderr)
		return errUsage
	}
	command, rest := global.Arg(0), global.Args()[1:]

	switch command {
	case "plot":
		return runPlot(ctx, rest, stdout, stderr)
	case "describe":
		return runDescribe(ctx, rest, stdout, stderr)
	case "export":
		return runExport(ctx, rest, stdout, stderr)
	case "states-at":
		return runStatesAt(ctx, rest, stdout, stderr)
	case "codes":
		return runCodes(ctx, rest, stdout, stderr)
	case "tdb":
		return runTDB(ctx, rest, stdout, stderr)
	case "find-load":
		return runFindLoad(ctx, rest, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "acisplot %s\n", version.String())
		return nil
	case "help":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `acisplot - ACIS telemetry, states and model plots

Usage: acisplot [-quiet] <command> [options]

Commands:
  plot       Plot fields against time (png, svg, pdf or html)
  describe   List fields, or print statistics of selected fields
  export     Write selected msids fields as an ASCII table
  states-at  Print the commanded states in force at a date
  codes      Print the state codes of an msid from the local TDB
  tdb        Manage the local TDB: "tdb migrate", "tdb import <csv>"
  find-load  Resolve a load week name in the load review tree
  version    Show version information
  help       Show this help message

Data Options (plot, describe, export, states-at):
  -config <file>       JSON settings file
  -tracelog <file>     Tracelog file
  -states <file>       Commanded states file
  -model <type=file>   Model output file; repeatable
  -cache <dir>         Series cache directory

Examples:
  acisplot plot -tracelog acis.tl -states states.dat -fields 1deamzt,states/pitch
  acisplot plot -model model=1deamzt.dat -panel 1deamzt -panel states/ccd_count -format html
  acisplot describe -tracelog acis.tl -fields 1dpamzt,dpa_power
  acisplot find-load -root /data/acis/LoadReviews JAN1116`)
}
