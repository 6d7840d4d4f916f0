package main

import (
	"github.com/bstardust/photo-geotagger/pkg/cli"
)

func main() {
	cli.Execute()
}
