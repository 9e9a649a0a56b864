// cmd/fdrconv/main.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// fdrconv converts recorded flight-track files (ForeFlight-compatible
// CSV, KML, or GPX) into X-Plane FDR v4 replay files.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/fdr-tools/fdrconv/config"
	"github.com/fdr-tools/fdrconv/convert"
	"github.com/fdr-tools/fdrconv/log"
	"github.com/fdr-tools/fdrconv/util"
)

func main() {
	aircraft := flag.String("aircraft", "", "path to default X-Plane aircraft (.acf)")
	configPath := flag.String("config", "", "path to fdrconv config file")
	output := flag.String("output", "", "directory to write FDR output files to")
	timezone := flag.String("timezone", "", "timezone offset to Zulu applied to all input files (hours or hh:mm[:ss])")
	logLevel := flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir := flag.String("logdir", "", "directory to write logs to")
	parallel := flag.Int("parallel", 1, "number of files to convert concurrently")
	flag.Parse()

	if len(flag.Args()) == 0 {
		fmt.Fprintf(os.Stderr, "usage: fdrconv [flags] <trackfile>...\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	lg := log.New(*logLevel, *logDir)

	var errorLogger util.ErrorLogger

	var cfg *config.File
	if path := config.FindFile(*configPath); path != "" {
		var err error
		if cfg, err = config.ParseFile(path); err != nil {
			errorLogger.Push(path)
			errorLogger.Error(err)
			errorLogger.PrintErrors(lg)
			os.Exit(1)
		}
		lg.Infof("%s: read config file", path)
	}

	overrides := config.Overrides{
		Aircraft: *aircraft,
		OutPath:  *output,
	}
	if *timezone != "" {
		tz, err := config.ParseTimezone(*timezone)
		if err != nil {
			fmt.Fprintf(os.Stderr, "-timezone: %v\n", err)
			os.Exit(1)
		}
		overrides.Timezone = &tz
	}

	opts := convert.Options{Config: cfg, Overrides: overrides, Logger: lg}

	// Files are converted independently; one file's failure doesn't stop
	// the others.
	files := flag.Args()
	outPaths := make([]string, len(files))
	errors := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(max(*parallel, 1))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			outPaths[i], errors[i] = convert.Convert(path, opts)
			return nil
		})
	}
	g.Wait()

	failed := false
	for i, path := range files {
		if errors[i] != nil {
			failed = true
			lg.Errorf("%s: %v", path, errors[i])
			errorLogger.Push(path)
			errorLogger.Error(errors[i])
			errorLogger.Pop()
		} else {
			fmt.Printf("%s -> %s\n", path, outPaths[i])
		}
	}

	if failed {
		errorLogger.PrintErrors(nil)
		os.Exit(1)
	}
}
