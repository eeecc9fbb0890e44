package pattern

import (
	"strings"

	"github.com/debtmap-go/debtmap/internal/engineconfig"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

// responsibilityBuckets groups method-name prefixes into fixed
// responsibility categories.
var responsibilityBuckets = map[string]string{
	"save": "persistence", "load": "persistence", "store": "persistence", "fetch": "persistence", "persist": "persistence", "delete": "persistence", "query": "persistence",
	"validate": "validation", "check": "validation", "verify": "validation", "ensure": "validation",
	"compute": "computation", "calculate": "computation", "process": "computation", "transform": "computation", "aggregate": "computation",
	"new": "construction", "create": "construction", "build": "construction", "init": "construction", "make": "construction",
	"render": "presentation", "format": "presentation", "print": "presentation", "display": "presentation",
	"send": "communication", "receive": "communication", "publish": "communication", "subscribe": "communication", "notify": "communication",
	"get": "accessor", "set": "accessor", "is": "accessor", "has": "accessor",
}

func bucketFor(methodName string) (string, bool) {
	lower := strings.ToLower(methodName)
	for prefix, bucket := range responsibilityBuckets {
		if strings.HasPrefix(lower, prefix) {
			return bucket, true
		}
	}
	return "", false
}

func countResponsibilities(methods []MethodInfo) int {
	seen := make(map[string]bool)
	for _, m := range methods {
		if b, ok := bucketFor(m.Name); ok {
			seen[b] = true
		}
	}
	return len(seen)
}

// DetectGodObject evaluates a file's structs in declaration order against
// the configured thresholds and returns a GodObject DebtItem for the first
// one that exceeds at least one threshold.
func DetectGodObject(file FileUnit, thresholds engineconfig.GodObjectThresholds) *debt.DebtItem {
	for _, s := range file.Structs {
		item := detectGodObjectStruct(file, s, thresholds)
		if item != nil {
			return item
		}
	}
	return nil
}

func detectGodObjectStruct(file FileUnit, s StructInfo, thresholds engineconfig.GodObjectThresholds) *debt.DebtItem {
	methods := len(s.Methods)
	fields := len(s.Fields)
	responsibilities := countResponsibilities(s.Methods)
	totalComplexity := 0
	for _, m := range s.Methods {
		totalComplexity += m.Cyclomatic
	}

	violations := 0
	if methods > thresholds.Methods {
		violations++
	}
	if fields > thresholds.Fields {
		violations++
	}
	if responsibilities > thresholds.Responsibilities {
		violations++
	}
	if file.Lines > thresholds.Lines {
		violations++
	}
	if totalComplexity > thresholds.Complexity {
		violations++
	}

	if violations == 0 {
		return nil
	}

	confidence := "Possible"
	switch {
	case violations >= 5:
		confidence = "Definite"
	case violations >= 3:
		confidence = "Probable"
	}

	evidence := debt.Evidence{
		"methods":          float64(methods),
		"fields":           float64(fields),
		"responsibilities": float64(responsibilities),
		"lines":            float64(file.Lines),
		"complexity":       float64(totalComplexity),
	}

	return &debt.DebtItem{
		Location: debt.Location{FilePath: file.Path, Function: s.Name, StartLine: 1, EndLine: file.Lines},
		Category: debt.CategoryArchitecture,
		Kind: debt.DebtKind{
			Tag: debt.KindGodObject,
			GodObject: &debt.GodObjectEvidence{
				Methods: methods, Fields: fields, Responsibilities: responsibilities,
				Lines: file.Lines, TotalComplexity: totalComplexity, Confidence: confidence,
			},
		},
		Severity:          severityForConfidence(confidence),
		Evidence:          evidence,
		Rationale:         "type " + s.Name + " in " + file.Path + " exceeds god-object thresholds on " + confidenceDetail(violations),
		RecommendedAction: "split " + s.Name + " into smaller, single-responsibility types",
		Score:             100,
	}
}

func severityForConfidence(confidence string) debt.Severity {
	switch confidence {
	case "Definite":
		return debt.SeverityCritical
	case "Probable":
		return debt.SeverityHigh
	default:
		return debt.SeverityMedium
	}
}

func confidenceDetail(violations int) string {
	switch violations {
	case 1:
		return "1 dimension"
	default:
		return "multiple dimensions"
	}
}
