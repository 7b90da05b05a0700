package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sigStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	bufStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

func main() {
	var (
		callName    = flag.String("call", "", "Demo call to run (default: all)")
		argA        = flag.String("a", "3", "First argument")
		argB        = flag.String("b", "4", "Second argument")
		list        = flag.Bool("list", false, "List demo calls and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = dev
		defer logger.Sync()
	}

	if *interactive {
		if err := runInteractive(logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(logger, *callName, *argA, *argB, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger, callName, argA, argB string, listOnly bool) error {
	ctx := context.Background()

	world, err := newDemoWorld(ctx, logger)
	if err != nil {
		return err
	}
	defer world.Close()

	if listOnly {
		fmt.Println(headerStyle.Render("ffirun demo calls"))
		for _, c := range world.calls {
			fmt.Printf("  %-8s %s\n", c.name, sigStyle.Render(c.signature))
		}
		return nil
	}

	for i := range world.calls {
		c := &world.calls[i]
		if callName != "" && c.name != callName {
			continue
		}
		printCall(world, c, argA, argB)
	}
	return nil
}

func printCall(world *demoWorld, c *demoCall, argA, argB string) {
	fmt.Println(headerStyle.Render(c.name))
	fmt.Println("  " + sigStyle.Render(c.signature))

	result, err := c.invoke(world, c, argA, argB)
	if err != nil {
		fmt.Println("  " + errorStyle.Render(err.Error()))
		return
	}
	fmt.Printf("  values buffer: %s\n", bufStyle.Render(hexBytes(world.caller.last)))
	fmt.Printf("  result:        %s\n", resultStyle.Render(result))
}

func hexBytes(b []byte) string {
	if len(b) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return strings.Join(parts, " ")
}
