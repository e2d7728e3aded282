package magickit_test

import (
	"errors"
	"fmt"

	"github.com/gobeaver/magickit"
	"github.com/gobeaver/magickit/engine/memory"
)

func ExampleEngine_Open() {
	// Using the memory engine for example; use magickit.Open for libmagic
	engine := magickit.NewEngine("memory", memory.New())

	cookie, err := engine.Open(magickit.FlagMIMEType)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer cookie.Close()

	loaded, err := cookie.Load(magickit.DefaultDatabasePaths())
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer loaded.Close()

	mimeType, _ := loaded.Buffer([]byte("%PDF-1.7"))
	fmt.Println(mimeType)
	// Output:
	// application/pdf
}

func ExampleLoadError() {
	engine := magickit.NewEngine("memory", memory.New())
	cookie, _ := engine.Open(magickit.FlagNone)

	paths, _ := magickit.NewDatabasePaths("/nonexistent/magic.mgc")
	loaded, err := cookie.Load(paths)

	// A failed load hands the cookie back; retry with the default database
	var loadErr *magickit.LoadError[*magickit.Unloaded]
	if errors.As(err, &loadErr) {
		fmt.Println(magickit.FunctionOf(err))
		loaded, err = loadErr.Cookie().Load(magickit.DefaultDatabasePaths())
	}
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer loaded.Close()

	desc, _ := loaded.Buffer([]byte("GIF89a"))
	fmt.Println(desc)
	// Output:
	// magic_load
	// GIF image data, version 89a
}

func ExampleFlags_String() {
	flags := magickit.FlagMIME | magickit.FlagSymlink
	fmt.Println(flags)

	parsed, _ := magickit.ParseFlags("symlink | mime_type | mime_encoding")
	fmt.Println(parsed == flags)
	// Output:
	// SYMLINK | MIME_TYPE | MIME_ENCODING
	// true
}

func ExampleParseMIME() {
	mediaType, charset := magickit.ParseMIME("text/plain; charset=us-ascii")
	fmt.Println(mediaType, charset, magickit.MIMECategory(mediaType))
	// Output:
	// text/plain us-ascii text
}
