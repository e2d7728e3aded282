package magickit_test

import (
	"strings"
	"testing"

	"github.com/gobeaver/magickit"
	_ "github.com/gobeaver/magickit/engine/memory"
)

func BenchmarkDescribe(b *testing.B) {
	content := []byte("%PDF-1.7\n" + strings.Repeat("Hello, World! ", 100)) // ~1.4KB of content

	configs := map[string]*magickit.Config{
		"basic": {
			Engine: "memory",
		},
		"mime": {
			Engine: "memory",
			Flags:  "MIME",
		},
		"cached": {
			Engine:          "memory",
			CacheEnabled:    true,
			CacheTTLSeconds: 300,
		},
	}

	for name, cfg := range configs {
		b.Run(name, func(b *testing.B) {
			d, err := magickit.NewDescriber(cfg)
			if err != nil {
				b.Fatal(err)
			}
			defer d.Close()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := d.Buffer(content); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkOpenLoadClose(b *testing.B) {
	engine, err := magickit.LookupEngine("memory")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cookie, err := engine.Open(magickit.FlagNone)
		if err != nil {
			b.Fatal(err)
		}
		loaded, err := cookie.Load(magickit.DefaultDatabasePaths())
		if err != nil {
			b.Fatal(err)
		}
		loaded.Close()
	}
}

func BenchmarkParseFlags(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := magickit.ParseFlags("MIME_TYPE | SYMLINK | NO_CHECK_BUILTIN"); err != nil {
			b.Fatal(err)
		}
	}
}
