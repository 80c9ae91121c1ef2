package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "run":
		return runRun(args[1:])
	case "status":
		return runStatus(args[1:])
	case "init":
		return runInit(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "install":
		return runInstall(args[1:])
	case "prune":
		return runPrune(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("lineup-runner: submit one team lineup per account, in parallel")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  lineup-runner init")
	fmt.Println("  lineup-runner install")
	fmt.Println("  lineup-runner run --only-login")
	fmt.Println("  lineup-runner run")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init      write sample config files + run environment checks")
	fmt.Println("  doctor    validate configuration, directories and the browser driver")
	fmt.Println("  install   install the playwright driver and chromium")
	fmt.Println("  run       run one session per account and record results")
	fmt.Println("  status    ledger rollup, pending failed accounts, last run summary")
	fmt.Println("  prune     delete old failure screenshots")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Settings come from the environment and .env; run flags override them")
	fmt.Println("  - run --retry-failed re-runs only the accounts in <artifacts>/failed_accounts.csv")
	fmt.Println("  - Use --json on commands for machine-readable output")
}
