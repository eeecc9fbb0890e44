package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/debtmap-go/debtmap/internal/compare"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

var (
	diffTarget string
	diffJSON   bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <before.json> <after.json>",
	Short: "Compare two debtmap snapshots and classify what changed",
	Long: `Compare two JSON snapshots produced by "debtmap scan --json", matching
items by (file, function, category) and classifying each as resolved,
improved, worsened, new, or unchanged.

Use --target file:function:category to get a single item's detailed
per-metric delta instead of the full classified list.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := loadSnapshot(args[0])
		if err != nil {
			return fmt.Errorf("load before snapshot: %w", err)
		}
		after, err := loadSnapshot(args[1])
		if err != nil {
			return fmt.Errorf("load after snapshot: %w", err)
		}

		if diffTarget != "" {
			return runTargetDiff(cmd, before, after)
		}

		deltas := compare.Compare(before.DebtItems, after.DebtItems)
		if diffJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(deltas)
		}
		renderDeltas(cmd.OutOrStdout(), deltas)
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffTarget, "target", "", "file:function:category to get a detailed per-metric delta for")
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "output the delta list as JSON")
	rootCmd.AddCommand(diffCmd)
}

func loadSnapshot(path string) (*debt.AnalysisSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap debt.AnalysisSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func runTargetDiff(cmd *cobra.Command, before, after *debt.AnalysisSnapshot) error {
	parts := strings.SplitN(diffTarget, ":", 3)
	if len(parts) != 3 {
		return fmt.Errorf("--target must be file:function:category")
	}
	category, err := parseCategory(parts[2])
	if err != nil {
		return err
	}

	td := compare.Target(before.DebtItems, after.DebtItems, parts[0], parts[1], category)
	if td == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s not present in either snapshot\n", diffTarget)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", diffTarget, td.Status)
	fmt.Fprintf(cmd.OutOrStdout(), "  score: %.2f -> %.2f\n", td.ScoreBefore, td.ScoreAfter)
	for metric, delta := range td.MetricDeltas {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-28s %+.2f\n", metric, delta)
	}
	return nil
}

func parseCategory(s string) (debt.Category, error) {
	switch strings.ToLower(s) {
	case "complexity":
		return debt.CategoryComplexity, nil
	case "testing":
		return debt.CategoryTesting, nil
	case "architecture":
		return debt.CategoryArchitecture, nil
	case "dead":
		return debt.CategoryDead, nil
	case "duplication":
		return debt.CategoryDuplication, nil
	case "smell":
		return debt.CategorySmell, nil
	case "dependency":
		return debt.CategoryDependency, nil
	default:
		if n, err := strconv.Atoi(s); err == nil {
			return debt.Category(n), nil
		}
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// renderDeltas prints one line per delta, grouped by status, colored by
// whether the change is good (resolved/improved), bad (new/worsened),
// or neutral (unchanged).
func renderDeltas(w io.Writer, deltas []compare.Delta) {
	bold := color.New(color.Bold)
	order := []compare.Status{compare.StatusWorsened, compare.StatusNew, compare.StatusResolved, compare.StatusImproved, compare.StatusUnchanged}

	counts := make(map[compare.Status]int)
	for _, d := range deltas {
		counts[d.Status]++
	}

	bold.Fprintln(w, "Debtmap Diff")
	fmt.Fprintln(w, "════════════════════════════════════════")
	for _, status := range order {
		if counts[status] == 0 {
			continue
		}
		deltaColor(status).Fprintf(w, "%-10s %d\n", status, counts[status])
	}
	fmt.Fprintln(w)

	for _, status := range order {
		first := true
		for _, d := range deltas {
			if d.Status != status {
				continue
			}
			if first {
				label := status.String()
				bold.Fprintf(w, "%s%s:\n", strings.ToUpper(label[:1]), label[1:])
				first = false
			}
			item := d.After
			if item == nil {
				item = d.Before
			}
			deltaColor(status).Fprintf(w, "  %s:%d %s\n", item.Location.FilePath, item.Location.StartLine, item.Location.Function)
		}
	}
}

func deltaColor(s compare.Status) *color.Color {
	switch s {
	case compare.StatusNew, compare.StatusWorsened:
		return color.New(color.FgRed)
	case compare.StatusResolved, compare.StatusImproved:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgHiBlack)
	}
}
