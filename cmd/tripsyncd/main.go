package main

import (
	"flag"
	"fmt"
	"os"

	"tripsync/internal/di"
	"tripsync/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug logging to stdout")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "tripsyncd: %s\n", err)
		os.Exit(1)
	}
}
