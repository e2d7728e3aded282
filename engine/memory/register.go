package memory

import (
	"os"

	"github.com/gobeaver/magickit"
	"github.com/gobeaver/magickit/native"
)

// Name is the name the engine is registered under.
const Name = "memory"

func init() {
	magickit.RegisterEngine(Name, func() (native.Library, error) {
		// libmagic lists to stdout too
		return New(Config{ListOutput: os.Stdout}), nil
	})
}
