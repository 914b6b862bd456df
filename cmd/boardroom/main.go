package main

import (
	"fmt"
	"os"

	"github.com/soyeahso/boardroom/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "boardroom:", err)
		os.Exit(1)
	}
}
