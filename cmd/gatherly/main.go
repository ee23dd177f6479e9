package main

import (
	"github.com/gatherly-app/gatherly/internal/ui/cli"
)

func main() {
	cli.Execute()
}
