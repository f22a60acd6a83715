//go:build mage

// Package main contains Mage build targets for post-engine developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "post-engine"
	cmdPkg  = "./cmd/post-engine"
)

// starterFiles are written by Init when absent.
var starterFiles = []struct {
	path    string
	content string
}{
	{"topics.json", `{
  "career": [],
  "ai": [],
  "discipline": [],
  "personal_brand": []
}
`},
	{"used_topics.json", "[]\n"},
	{"instructions.md", `Write a LinkedIn post about: {topic}

Open with one short hook line. Follow with at least three actionable bullet
points, each starting with "-". Close with one line inviting discussion.
Stay under {MAX_WORD_LIMIT} words. Do not use emojis.
`},
	{"scrape_restrictions.json", `{
  "allowed_sources": {
    "career": [],
    "ai": [],
    "discipline": [],
    "personal_brand": []
  },
  "keywords": [],
  "exclude": []
}
`},
	{"config.env", `# NOTION_TOKEN=
# DATABASE_ID=
MODEL_NAME=mistral
MAX_WORD_LIMIT=220
`},
}

// Init writes starter topic, ledger, instruction, restriction and env files
// and creates the .secrets directory. Existing files are left alone.
func Init() error {
	if err := os.MkdirAll(".secrets", 0o700); err != nil {
		return fmt.Errorf("creating .secrets: %w", err)
	}
	for _, f := range starterFiles {
		if _, err := os.Stat(f.path); err == nil {
			fmt.Println("   exists ", f.path)
			continue
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.path, err)
		}
		fmt.Println("   created", f.path)
	}
	fmt.Println("Project files initialized. Put the integration token in .secrets/notion-token.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Draft builds the CLI and runs one drafting pass.
func Draft() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "draft")
}

// DryRun builds the CLI and prints a draft without publishing it.
func DryRun() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "draft", "--dry-run")
}

// Refresh builds the CLI and rebuilds the topic pool.
func Refresh() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "refresh")
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports directories Stats does not descend into.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir)
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}

// countDocWords counts words in Markdown files outside skipped directories.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			if skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}
