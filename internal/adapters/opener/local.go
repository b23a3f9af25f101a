package opener

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"collectra/internal/ports"
)

// LocalOpener serves uploads retained on disk, the default storage layout.
type LocalOpener struct{}

func NewLocalOpener() *LocalOpener { return &LocalOpener{} }

func (l *LocalOpener) Open(_ context.Context, filePath string) (io.ReadCloser, ports.Meta, error) {
	f, err := os.Open(filePath)
	if err != nil {
		log.Printf("[OPENER][FILE][ERR] open %q: %v", filePath, err)
		return nil, ports.Meta{}, fmt.Errorf("open local file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ports.Meta{}, fmt.Errorf("stat local file: %w", err)
	}
	return f, ports.Meta{
		Source: "file",
		Size:   st.Size(),
		Key:    filePath,
	}, nil
}
