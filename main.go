// agent-shield - Governance readiness scanner for AI agent projects
//
// Commands:
//   scan [path]        Scan a project directory for governance readiness
//   frameworks         List the supported governance frameworks
//   watch [path]       Watch a directory and rescan on changes
//   --version          Show version information
//   --config <path>    Use specific config file
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	cfgpkg "github.com/agentshield/agentshield/internal/config"
	"github.com/agentshield/agentshield/internal/engine"
	"github.com/agentshield/agentshield/internal/render"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

// Global config
var config *cfgpkg.Config
var configPath string

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A .env in the working directory may carry AGENT_SHIELD_CONFIG.
	_ = godotenv.Load()

	configFlag := ""
	frameworkFlag := "all"
	formatFlag := render.FormatText
	filteredArgs := []string{}

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" && i+1 < len(args):
			configFlag = args[i+1]
			i++
		case args[i] == "--framework" && i+1 < len(args):
			frameworkFlag = args[i+1]
			i++
		case args[i] == "--format" && i+1 < len(args):
			formatFlag = args[i+1]
			i++
		default:
			filteredArgs = append(filteredArgs, args[i])
		}
	}

	if configFlag != "" {
		if _, err := os.Stat(configFlag); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "ERROR: Config not found: %s\n", configFlag)
				return 2
			}
			fmt.Fprintf(os.Stderr, "ERROR: Config stat failed: %v\n", err)
			return 2
		}
	}

	cfg, cfgPath, err := cfgpkg.Resolve(cfgpkg.Flags{ConfigPath: configFlag})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Config load failed: %v\n", err)
		return 2
	}
	config = &cfg
	configPath = cfgPath

	if len(filteredArgs) < 1 {
		printUsage()
		return 2
	}

	cmd := filteredArgs[0]

	switch cmd {
	case "--version", "-v", "version":
		fmt.Printf("agent-shield v%s (built %s)\n", Version, BuildDate)
		if configPath != "" {
			fmt.Printf("Config: %s\n", configPath)
		}
		return 0

	case "scan":
		path := "."
		if len(filteredArgs) > 1 {
			path = filteredArgs[1]
		}
		return runScan(path, frameworkFlag, formatFlag)

	case "frameworks":
		for _, fw := range engine.Frameworks() {
			fmt.Printf("%-12s %s\n", fw.Name, fw.Description)
		}
		return 0

	case "watch":
		path := "."
		if len(filteredArgs) > 1 {
			path = filteredArgs[1]
		}
		return runWatch(path, frameworkFlag)

	case "--help", "-h", "help":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Println(`agent-shield - Governance readiness scanner for AI agent projects

Usage:
  agent-shield scan [path] [--framework <name>] [--format <fmt>]
                                           Scan a project (default path: .)
  agent-shield frameworks                  List supported governance frameworks
  agent-shield watch [path]                Watch a directory and rescan on changes
  agent-shield --version                   Show version information
  agent-shield --config <path>             Use specific config file (optional override)
  agent-shield --help                      Show this help message

Frameworks: ` + strings.Join(engine.FrameworkNames(), ", ") + `
Formats:    ` + strings.Join(render.Formats(), ", ") + `

Exit codes:
  0  scan completed at or above the 70% CI gate
  1  scan completed below the 70% CI gate
  2  scan could not run (bad arguments, unreadable project, invalid config)

Config Source:
  - Built-in defaults (no external file required)
  - Optional override via --config <path> or AGENT_SHIELD_CONFIG (.env supported)`)
}
