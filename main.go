//go:build !gui

package main

import (
	"github.com/metcalfc/moonriver/internal/cli"
	"github.com/metcalfc/moonriver/internal/tui"
)

func main() {
	cli.Execute(tui.Run)
}
