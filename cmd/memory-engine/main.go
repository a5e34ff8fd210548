package main

import (
	"os"

	"github.com/keepsakelabs/keepsake-memory/engineservice"
)

func main() {
	if err := engineservice.Run(); err != nil {
		os.Exit(1)
	}
}
