package main

import (
	"fmt"
	"os"

	"modfuse/cmd/modfuse"
	"modfuse/pkg/style"
)

func main() {
	rootCmd := modfuse.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
