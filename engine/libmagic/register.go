//go:build cgo

package libmagic

import (
	"github.com/gobeaver/magickit"
	"github.com/gobeaver/magickit/native"
)

func init() {
	magickit.RegisterEngine(magickit.DefaultEngine, func() (native.Library, error) {
		return New(), nil
	})
}
