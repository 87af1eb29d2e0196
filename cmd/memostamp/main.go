package main

import (
	"os"

	"github.com/osvaldoandrade/memostamp/pkg/memostamp"
)

func main() {
	os.Exit(memostamp.Execute())
}
