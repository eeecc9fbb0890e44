package pattern

import (
	"testing"

	"github.com/debtmap-go/debtmap/internal/engineconfig"
)

func uniformImpls(n int) []TraitImplInfo {
	impls := make([]TraitImplInfo, n)
	for i := range impls {
		impls[i] = TraitImplInfo{
			TraitName:  "Handler",
			StructName: "Impl",
			Methods: []MethodInfo{
				{Name: "Handle", Signature: "(ctx) error", Cyclomatic: 1},
			},
		}
	}
	return impls
}

func TestDetectBoilerplateDisabledReturnsNil(t *testing.T) {
	cfg := engineconfig.BoilerplateDetectionConfig{Enabled: false, MinConfidence: 0}
	file := FileUnit{Path: "f.go", Lines: 10, TraitImpls: uniformImpls(10)}

	if item := DetectBoilerplate(file, cfg); item != nil {
		t.Errorf("expected nil when boilerplate detection is disabled, got %+v", item)
	}
}

func TestDetectBoilerplateSingleImplIsNeverFlagged(t *testing.T) {
	cfg := engineconfig.Default().BoilerplateDetection
	file := FileUnit{Path: "f.go", Lines: 10, TraitImpls: uniformImpls(1)}

	if item := DetectBoilerplate(file, cfg); item != nil {
		t.Errorf("expected nil for a single implementation (no repetition to detect), got %+v", item)
	}
}

func TestDetectBoilerplateUniformLowComplexityImplsFlagged(t *testing.T) {
	cfg := engineconfig.Default().BoilerplateDetection
	file := FileUnit{Path: "handlers.go", Lines: 40, TraitImpls: uniformImpls(20)}

	item := DetectBoilerplate(file, cfg)
	if item == nil {
		t.Fatal("expected many uniform, low-complexity implementations to be flagged as boilerplate")
	}
	if item.Kind.Boilerplate.ImplCount != 20 {
		t.Errorf("expected ImplCount=20, got %d", item.Kind.Boilerplate.ImplCount)
	}
	if item.Kind.Boilerplate.MethodUniformity != 1.0 {
		t.Errorf("expected perfect method uniformity across identical signatures, got %v", item.Kind.Boilerplate.MethodUniformity)
	}
}

func TestDetectBoilerplateBelowConfidenceFloorReturnsNil(t *testing.T) {
	cfg := engineconfig.BoilerplateDetectionConfig{Enabled: true, MinConfidence: 0.99}
	file := FileUnit{Path: "f.go", Lines: 40, TraitImpls: uniformImpls(5)}

	if item := DetectBoilerplate(file, cfg); item != nil {
		t.Errorf("expected an unreachable confidence floor to suppress the finding, got %+v", item)
	}
}

func TestDetectBoilerplatePicksHighestScoringTraitGroup(t *testing.T) {
	cfg := engineconfig.Default().BoilerplateDetection

	var impls []TraitImplInfo
	impls = append(impls, uniformImpls(20)...)
	// A second, much smaller, less uniform group that should lose.
	impls = append(impls, TraitImplInfo{
		TraitName: "Rare",
		Methods:   []MethodInfo{{Name: "Do", Signature: "(x) y", Cyclomatic: 15}},
	})

	file := FileUnit{Path: "mixed.go", Lines: 40, TraitImpls: impls}
	item := DetectBoilerplate(file, cfg)
	if item == nil {
		t.Fatal("expected a boilerplate finding from the dominant group")
	}
	if item.Location.Function != "Handler" {
		t.Errorf("expected the higher-scoring Handler group to win over Rare, got %q", item.Location.Function)
	}
}
