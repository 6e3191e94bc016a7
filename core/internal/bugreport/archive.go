package bugreport

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"slimdiag/evidence"
)

// copyBufferSize is the transfer buffer used for every bundle entry.
const copyBufferSize = 1024

// writeBundle creates a zip at path holding each source that exists and is
// non-empty, in the given order, under its base name. The zip writer and the
// file are closed in that order on every return path.
func writeBundle(path string, sources []string) (entries []string, err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	zw := zip.NewWriter(f)
	defer func() {
		if cerr := zw.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	buf := make([]byte, copyBufferSize)
	for _, src := range sources {
		ok, err := evidence.HasContent(src)
		if err != nil {
			return entries, err
		}
		if !ok {
			continue
		}
		if err := addEntry(zw, src, buf); err != nil {
			return entries, err
		}
		entries = append(entries, filepath.Base(src))
	}
	return entries, nil
}

func addEntry(zw *zip.Writer, src string, buf []byte) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(src)
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	// Hide os.File's WriterTo so the copy goes through buf.
	_, err = io.CopyBuffer(w, struct{ io.Reader }{in}, buf)
	return err
}
