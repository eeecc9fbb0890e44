package discovery

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// generatedPattern matches the standard Go generated file comment.
// Must appear before the package declaration per Go convention.
var generatedPattern = regexp.MustCompile(`^// Code generated .* DO NOT EDIT\.$`)

// classifyGoFile classifies a Go file by its filename.
func classifyGoFile(name string) FileClass {
	if strings.HasSuffix(name, "_test.go") {
		return ClassTest
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return ClassExcluded
	}
	return ClassSource
}

// classifyPythonFile classifies a Python file by its filename.
// Test files match test_*.py or *_test.py patterns.
func classifyPythonFile(name string) FileClass {
	base := strings.TrimSuffix(name, ".py")
	if strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test") {
		return ClassTest
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return ClassExcluded
	}
	return ClassSource
}

// classifyTypeScriptFile classifies a TypeScript file by its filename.
// Test files match *.test.ts, *.spec.ts, *.test.tsx, *.spec.tsx patterns.
func classifyTypeScriptFile(name string) FileClass {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".test.ts") || strings.HasSuffix(lower, ".spec.ts") ||
		strings.HasSuffix(lower, ".test.tsx") || strings.HasSuffix(lower, ".spec.tsx") {
		return ClassTest
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return ClassExcluded
	}
	return ClassSource
}

// isGeneratedFile checks whether a Go file contains a generated code comment
// before the package declaration. This handles files that have copyright headers
// before the generated comment (a common pattern with tools like stringer).
func isGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "package ") {
			return false, nil
		}
		if generatedPattern.MatchString(line) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}
	return false, nil
}
