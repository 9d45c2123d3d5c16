package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/api"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/commands"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

const defaultConfigPath = "botiplist.toml"

func main() {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Failed to load .env: %v", err)
	}

	ctx := &commands.AppContext{
		Version: api.VersionInfo{Version: version, Commit: commit, Date: date},
	}

	// Define flags
	flag.StringVar(&ctx.ConfigPath, "config", defaultConfigPath, "Path to configuration file (env: BOTIPLIST_CONFIG)")
	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable debug logging (env: BOTIPLIST_VERBOSE)")

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Search engine crawler IP list builder\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  read [-force] [-echo]   Regenerate the list if stale and print its path\n")
		fmt.Fprintf(os.Stderr, "  serve [-bind addr]      Run the HTTP API with periodic refresh\n")
		fmt.Fprintf(os.Stderr, "  apply [-refresh]        Load the list into ipsets and add iptables rules\n")
		fmt.Fprintf(os.Stderr, "  undo                    Remove iptables rules and ipsets created by apply\n")
		fmt.Fprintf(os.Stderr, "  verify <ip>...          Check addresses against the list and reverse DNS\n")
		fmt.Fprintf(os.Stderr, "  endpoints [-all]        Print the endpoint registry\n")
		fmt.Fprintf(os.Stderr, "  config                  Print the effective configuration\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			ctx.ConfigExplicit = true
		}
	})
	if !ctx.ConfigExplicit {
		if p := os.Getenv("BOTIPLIST_CONFIG"); p != "" {
			ctx.ConfigPath = p
			ctx.ConfigExplicit = true
		}
	}
	if !ctx.Verbose {
		if v, err := strconv.ParseBool(os.Getenv("BOTIPLIST_VERBOSE")); err == nil {
			ctx.Verbose = v
		}
	}

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	cmds := []commands.Runner{
		commands.CreateReadCommand(),
		commands.CreateServeCommand(),
		commands.CreateApplyCommand(),
		commands.CreateUndoCommand(),
		commands.CreateVerifyCommand(),
		commands.CreateEndpointsCommand(),
		commands.CreateConfigCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], ctx); err != nil {
				if errors.Is(err, flag.ErrHelp) {
					os.Exit(0)
				}
				log.Fatalf("Failed to initialize command: %v", err)
			}

			if err := cmd.Run(); err != nil {
				log.Fatalf("Failed to run command: %v", err)
			}

			os.Exit(0)
		}
	}

	log.Fatalf("Unknown subcommand: %s", subcommand)
}
