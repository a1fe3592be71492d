package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "dump":
		err = cmdDump(os.Args[2:])
	case "json":
		err = cmdJSON(os.Args[2:])
	case "events":
		err = cmdEvents(os.Args[2:])
	case "handles":
		err = cmdHandles(os.Args[2:])
	case "graph":
		err = cmdGraph(os.Args[2:])
	case "report":
		err = cmdReport(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `serdump — Java object serialization stream decoder

Usage:
  serdump dump    --in <path> [--offsets]          Print the indented decode trace
  serdump json    --in <path> [--out <file>]       Write the content tree as JSON
  serdump events  --in <path> [--out <file>]       Write decode events as JSON lines
  serdump handles --in <path>                      List allocated handles
  serdump graph   --in <path> --out <file.dot>     Reference graph (--themed, --json)
  serdump report  --in <path> --out <file.html>    HTML summary with handles and trace

Flags (all commands):
  --in <path>          Input file, "-" for stdin
  --hex                Input is hex text
  --raw                Input is binary (skip hex detection)
  --config <file>      TOML config file
  --max-depth <n>      Nesting cap
  --max-input <n>      Input size cap in bytes
  --log-level <lvl>    trace, debug, info, warn, error, off

Environment: SERDUMP_LOG_LEVEL, SERDUMP_MAX_DEPTH, SERDUMP_MAX_INPUT
`)
}
