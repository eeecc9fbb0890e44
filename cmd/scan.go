package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/debtmap-go/debtmap/internal/coverageio"
	"github.com/debtmap-go/debtmap/internal/engine"
	"github.com/debtmap-go/debtmap/internal/engineconfig"
	"github.com/debtmap-go/debtmap/internal/progress"
	"github.com/debtmap-go/debtmap/internal/render"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

var (
	configPath     string
	threshold      float64
	jsonOutput     bool
	markdownOutput bool
	coveragePath   string
	showSuppressed bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Scan a project for technical debt",
	Long: `Scan a project directory and produce a ranked list of technical-debt
items: complexity hot spots, untested complex code, god objects,
boilerplate trait implementations, dead code, and call-graph health
issues.

Supported languages: Go, Python, TypeScript. Languages are
auto-detected from project files (go.mod, pyproject.toml,
tsconfig.json, package.json).`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("cannot resolve path: %w", err)
		}
		if err := validateProject(dir); err != nil {
			return err
		}

		cfg, err := engineconfig.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		opts := engine.Options{
			Config:         cfg,
			ShowSuppressed: showSuppressed,
			Warnings:       cmd.ErrOrStderr(),
		}

		if coveragePath != "" {
			modulePath, err := readModulePath(dir)
			if err != nil {
				return fmt.Errorf("resolve module path for --coverage: %w", err)
			}
			lineHits, err := coverageio.Load(coveragePath, dir, modulePath)
			if err != nil {
				return fmt.Errorf("load coverage profile: %w", err)
			}
			opts.Coverage = lineHits
		}

		spinner := progress.NewSpinner(os.Stderr)
		opts.OnProgress = spinner.Func()
		spinner.Start("scanning...")

		snapshot, err := engine.Run(context.Background(), dir, opts)
		if err != nil {
			spinner.Stop("")
			return err
		}
		spinner.Stop("done.")

		switch {
		case jsonOutput:
			err = render.JSON(cmd.OutOrStdout(), snapshot)
		case markdownOutput:
			render.Markdown(cmd.OutOrStdout(), snapshot)
		default:
			render.Terminal(cmd.OutOrStdout(), snapshot, verbose)
		}
		if err != nil {
			return fmt.Errorf("render output: %w", err)
		}

		if threshold > 0 && snapshot.Summary.HealthScore < threshold {
			return &debt.ExitError{
				Code: debt.ExitThresholdFail,
				Err:  fmt.Errorf("call graph health score %.1f is below threshold %.1f", snapshot.Summary.HealthScore, threshold),
			}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&configPath, "config", "", "path to a debtmap config YAML file")
	scanCmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum call-graph health score (exit code 2 if below)")
	scanCmd.Flags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	scanCmd.Flags().BoolVar(&markdownOutput, "markdown", false, "output results as Markdown")
	scanCmd.Flags().StringVar(&coveragePath, "coverage", "", "path to a go test -coverprofile file to feed the coverage mapper's direct coverage")
	scanCmd.Flags().BoolVar(&showSuppressed, "show-suppressed", false, "include suppressed items in the output, tagged with their justification")
	rootCmd.AddCommand(scanCmd)
}

// validateProject checks that dir exists, is a directory, and contains
// recognized source files.
func validateProject(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %s", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	indicators := []string{"go.mod", "pyproject.toml", "setup.py", "requirements.txt", "tsconfig.json", "package.json"}
	for _, f := range indicators {
		if _, err := os.Stat(filepath.Join(dir, f)); err == nil {
			return nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory: %s", err)
	}
	recognizedExts := map[string]bool{".go": true, ".py": true, ".ts": true, ".tsx": true}
	for _, entry := range entries {
		if !entry.IsDir() && recognizedExts[filepath.Ext(entry.Name())] {
			return nil
		}
	}

	return fmt.Errorf("no recognized project found in: %s\nSupported: Go (go.mod), Python (pyproject.toml), TypeScript (tsconfig.json)", dir)
}

// readModulePath extracts the module path from dir's go.mod, needed to
// resolve a coverage profile's import-path-relative file names.
func readModulePath(dir string) (string, error) {
	f, err := os.Open(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module")), nil
		}
	}
	return "", fmt.Errorf("no module directive found in %s/go.mod", dir)
}
