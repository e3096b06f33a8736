// Package fs provides the file:// sink, which writes Plans to a local filesystem.
package fs

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.gazette.dev/rackplan/sink"
)

// FS is the filesystem written to by file:// sinks. Tests may replace it
// with an in-memory filesystem.
var FS afero.Fs = afero.NewOsFs()

// SinkQueryArgs contains fields that are parsed from the query arguments
// of a file:// sink URL.
type SinkQueryArgs struct {
	// Parents creates missing parent directories of the written file.
	Parents bool
	// Mode is the octal permission mode of the written file.
	Mode string
}

type store struct {
	fs   afero.Fs
	args SinkQueryArgs
	mode os.FileMode
}

// New creates a new filesystem Sink from the provided URL.
func New(ep *url.URL) (sink.Sink, error) {
	var s, err = newStore(FS, ep)
	if err != nil {
		return nil, err
	}
	return sink.NewBlobSink(s, ep.Path), nil
}

func newStore(fs afero.Fs, ep *url.URL) (*store, error) {
	var s = &store{fs: fs, mode: 0644}

	if err := sink.ParseQueryArgs(ep, &s.args); err != nil {
		return nil, err
	} else if ep.Path == "" {
		return nil, fmt.Errorf("file:// sink requires a path")
	}
	if s.args.Mode != "" {
		var mode uint32
		if _, err := fmt.Sscanf(s.args.Mode, "%o", &mode); err != nil {
			return nil, fmt.Errorf("parsing file mode %q: %w", s.args.Mode, err)
		}
		s.mode = os.FileMode(mode)
	}
	return s, nil
}

func (s *store) Provider() string { return "fs" }

func (s *store) Put(_ context.Context, path string, content io.ReaderAt, contentLength int64, _ string) error {
	var fsPath = filepath.FromSlash(path)
	var dir = filepath.Dir(fsPath)

	if s.args.Parents {
		if err := s.fs.MkdirAll(dir, 0750); err != nil {
			return err
		}
	} else if _, err := s.fs.Stat(dir); err != nil {
		return fmt.Errorf("%s %s: %w", invalidSinkDirectory, dir, err)
	}

	f, err := afero.TempFile(s.fs, dir, ".partial-"+filepath.Base(fsPath))
	if err != nil {
		return err
	}

	defer func(name string) {
		if rmErr := s.fs.Remove(name); rmErr != nil && !os.IsNotExist(rmErr) {
			log.WithFields(log.Fields{"err": rmErr, "path": fsPath}).
				Warn("failed to cleanup temp file")
		}
	}(f.Name())

	_, err = io.Copy(f, io.NewSectionReader(content, 0, contentLength))

	if err == nil {
		err = f.Close()
	} else {
		_ = f.Close()
	}
	if err == nil {
		err = s.fs.Chmod(f.Name(), s.mode)
	}
	if err == nil {
		err = s.fs.Rename(f.Name(), fsPath)
	}
	return err
}

const invalidSinkDirectory = "invalid file sink directory"
