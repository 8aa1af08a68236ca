// embedded.go
package dictionary

import (
	"bytes"
	"compress/gzip"
	_ "embed"
	"io"
	"sync"
)

//go:embed embedded/fix44.xml.gz
var embeddedFIX44Gz []byte

var (
	embeddedOnce sync.Once
	embeddedDict *Dictionary
	embeddedErr  error
)

// Embedded returns the built-in FIX 4.4 dictionary, shipped compiled into
// the binary as a gzip-compressed byte array so a host needs no dictionary
// file on disk to get started. It is parsed once, lazily, and shared by
// every caller; the returned Dictionary must be treated as read-only.
func Embedded() (*Dictionary, error) {
	embeddedOnce.Do(func() {
		gz, err := gzip.NewReader(bytes.NewReader(embeddedFIX44Gz))
		if err != nil {
			embeddedErr = err
			return
		}
		defer gz.Close()

		xmlBytes, err := io.ReadAll(gz)
		if err != nil {
			embeddedErr = err
			return
		}

		embeddedDict, embeddedErr = Load(bytes.NewReader(xmlBytes))
	})

	return embeddedDict, embeddedErr
}
