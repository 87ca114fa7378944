//go:build ignore

// build.go - real estate dashboard build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, web, estatectl, test, clean, dist

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "github.com/IsnaAyustin/final-project-ds"

// executables maps a directory under cmd/ to its output name
var executables = map[string]string{
	"web":       "estate-web",
	"estatectl": "estatectl",
}

var (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
)

type buildContext struct {
	rootDir string
	distDir string
	verbose bool
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	cwd, err := os.Getwd()
	if err != nil {
		printError(fmt.Sprintf("Failed to get current directory: %v", err))
		os.Exit(1)
	}
	ctx := &buildContext{rootDir: cwd, distDir: filepath.Join(cwd, "dist"), verbose: *verbose}

	start := time.Now()
	switch *target {
	case "all":
		for name := range executables {
			ctx.buildExecutable(name)
		}
	case "web", "estatectl":
		ctx.buildExecutable(*target)
	case "test":
		ctx.runTests()
	case "clean":
		ctx.clean()
	case "dist":
		for name := range executables {
			ctx.buildExecutable(name)
		}
		ctx.copyData()
	default:
		fmt.Println("Targets: all, web, estatectl, test, clean, dist")
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(start).Round(time.Millisecond)))
}

func (c *buildContext) buildExecutable(name string) {
	exeName := executables[name]
	if runtime.GOOS == "windows" {
		exeName += ".exe"
	}
	printInfo(fmt.Sprintf("Building %s...", name))

	contracts := module + "/pkg/contracts"
	ldflags := fmt.Sprintf("-s -w -X %s.BuildTime=%s -X %s.GitCommit=%s",
		contracts, time.Now().UTC().Format(time.RFC3339), contracts, gitCommit())

	outputPath := filepath.Join(c.distDir, exeName)
	args := []string{"build", "-ldflags", ldflags, "-o", outputPath, "./cmd/" + name}
	if c.verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	if err := c.run("go", args...); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, float64(info.Size())/1024/1024))
	}
}

func (c *buildContext) runTests() {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if c.verbose {
		args = append(args, "-v")
	}
	if err := c.run("go", append(args, "./...")...); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
}

func (c *buildContext) clean() {
	printInfo("Cleaning build artifacts...")
	for _, dir := range []string{c.distDir, filepath.Join(c.rootDir, "exports"), filepath.Join(c.rootDir, "logs")} {
		if err := os.RemoveAll(dir); err != nil {
			printError(fmt.Sprintf("Failed to clean %s: %v", dir, err))
		}
	}
}

// copyData places the sample dataset and model next to the binaries, where
// the default paths configuration looks for them
func (c *buildContext) copyData() {
	printInfo("Copying data files...")
	target := filepath.Join(c.distDir, "data")
	if err := os.MkdirAll(target, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", target, err))
		os.Exit(1)
	}

	entries, err := os.ReadDir(filepath.Join(c.rootDir, "data"))
	if err != nil {
		printError(fmt.Sprintf("Failed to read data directory: %v", err))
		os.Exit(1)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.rootDir, "data", entry.Name()))
		if err == nil {
			err = os.WriteFile(filepath.Join(target, entry.Name()), data, 0644)
		}
		if err != nil {
			printError(fmt.Sprintf("Failed to copy %s: %v", entry.Name(), err))
			os.Exit(1)
		}
	}
}

func (c *buildContext) run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = c.rootDir
	cmd.Stderr = os.Stderr
	if c.verbose {
		fmt.Printf("Running: %s %s\n", name, strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}
	return cmd.Run()
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}
