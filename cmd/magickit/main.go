// Command magickit identifies file types with libmagic.
//
// Usage: magickit <command> [options]
package main

import (
	"os"

	_ "github.com/gobeaver/magickit/engine/libmagic"
	_ "github.com/gobeaver/magickit/engine/memory"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
