package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"lineup-runner/internal/artifacts"
	"lineup-runner/internal/browser"
	"lineup-runner/internal/settings"
)

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	envFile := fs.String("env", ".env", "dotenv file loaded before reading the environment")
	skipBrowser := fs.Bool("skip-browser", false, "do not check the browser driver")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := settings.LoadEnv(strings.TrimSpace(*envFile))
	if err != nil {
		return err
	}
	res, err := settings.InitWorkspace(doctorOptions(e, *skipBrowser))
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	fmt.Println("workspace initialized")
	fmt.Printf("artifacts_dir: %s\n", res.ArtifactsDir)
	for _, path := range res.Created {
		fmt.Printf("created: %s\n", path)
	}
	fmt.Println("checks:")
	printChecks("  ", res.DoctorResult)
	if !res.DoctorResult.OK {
		fmt.Println("next: fill in the sample files, set BASE_URL, then run: lineup-runner doctor")
		return nil
	}
	fmt.Println("next: lineup-runner run --only-login")
	return nil
}

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	envFile := fs.String("env", ".env", "dotenv file loaded before reading the environment")
	skipBrowser := fs.Bool("skip-browser", false, "do not check the browser driver")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := settings.LoadEnv(strings.TrimSpace(*envFile))
	if err != nil {
		return err
	}
	res := settings.Doctor(doctorOptions(e, *skipBrowser))
	if *jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else {
		printChecks("", res)
	}
	if !res.OK {
		return errors.New("doctor checks failed")
	}
	if !*jsonOut {
		fmt.Println("doctor: all checks passed")
	}
	return nil
}

func runInstall(args []string) error {
	fs := flag.NewFlagSet("install", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	fmt.Println("installing playwright driver and chromium...")
	if err := browser.Install(); err != nil {
		return err
	}
	fmt.Println("install: done")
	return nil
}

func runPrune(args []string) error {
	fs := flag.NewFlagSet("prune", flag.ContinueOnError)
	envFile := fs.String("env", ".env", "dotenv file loaded before reading the environment")
	keep := fs.Int("keep", 50, "number of most recent failure screenshots to keep")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *keep < 0 {
		return fmt.Errorf("--keep must be >= 0")
	}

	e, err := settings.LoadEnv(strings.TrimSpace(*envFile))
	if err != nil {
		return err
	}
	store := artifacts.New(e.Layout().Root)
	removed, err := store.Prune(*keep)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(map[string]int{"removed": removed, "kept": len(store.Screenshots())})
	}
	fmt.Printf("prune: removed %d screenshot(s) from %s\n", removed, store.Dir())
	return nil
}

func doctorOptions(e settings.Env, skipBrowser bool) settings.DoctorOptions {
	opts := settings.DoctorOptions{Env: e}
	if !skipBrowser {
		opts.BrowserCheck = browser.Check
	}
	return opts
}

func printChecks(indent string, res settings.DoctorResult) {
	for _, c := range res.Checks {
		status := "ok"
		if !c.OK {
			status = "fail"
		}
		fmt.Printf("%s%s: %s (%s)\n", indent, c.Name, status, c.Message)
	}
}
