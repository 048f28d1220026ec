package walker

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"dirdoc/internal/tree"
)

// DefaultRootDescription is the placeholder description given to the scan root.
const DefaultRootDescription = "Project root directory"

// ErrPathNotFound is returned when the scan root does not exist.
var ErrPathNotFound = errors.New("path not found")

// ErrInvalidName is returned for an entry whose name is not valid UTF-8.
// Such a name cannot be written to a document and read back unchanged.
var ErrInvalidName = errors.New("name is not valid UTF-8")

// Options controls which entries a walk includes. Globs use doublestar syntax.
type Options struct {
	// DefaultDepth is the number of levels listed below a directory whose
	// base name has no entry in DirectoryDepths.
	DefaultDepth int
	// DirectoryDepths overrides DefaultDepth by directory base name.
	DirectoryDepths map[string]int
	// ExcludePatterns are matched against slash-separated paths relative to
	// the scan root, for directories and files alike.
	ExcludePatterns []string
	// ExcludeFiles are matched against file base names.
	ExcludeFiles []string
	// IncludeRootFiles lists files that sit directly in the scan root.
	IncludeRootFiles bool
	// IncludeEmptyDirectories keeps directories whose listing is empty.
	IncludeEmptyDirectories bool
}

// MaxDepth returns the effective depth limit for a directory base name.
func (o Options) MaxDepth(dirName string) int {
	if depth, ok := o.DirectoryDepths[dirName]; ok {
		return depth
	}
	return o.DefaultDepth
}

// Progress is notified once for every directory whose entries are listed.
type Progress interface {
	SetDirectory(dir string)
}

type Walker struct {
	FS       afero.Fs
	Logger   log.Logger
	Progress Progress
}

// New builds a Walker over fs. A nil logger discards output.
func New(fs afero.Fs, logger log.Logger) *Walker {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Walker{FS: fs, Logger: logger}
}

// Walk scans rootPath into a tree. Any IO error aborts the walk; no partial
// tree is returned.
func (w *Walker) Walk(rootPath string, opts Options) (*tree.Node, error) {
	realPath, err := w.resolve(rootPath)
	if err != nil {
		return nil, err
	}

	if !utf8.ValidString(filepath.Base(realPath)) {
		return nil, errors.Wrapf(ErrInvalidName, "%q", realPath)
	}

	root := tree.NewDirectory(filepath.Base(realPath), DefaultRootDescription)
	root.AbsolutePath = realPath

	if err := w.walkDir(root, realPath, "", 0, opts); err != nil {
		return nil, err
	}

	level.Debug(w.Logger).Log("event", "walk.done", "root", realPath, "entries", root.Len())
	return root, nil
}

func (w *Walker) resolve(rootPath string) (string, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", rootPath)
	}

	if _, err := w.FS.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(ErrPathNotFound, rootPath)
		}
		return "", errors.Wrapf(err, "stat %s", rootPath)
	}

	if _, ok := w.FS.(*afero.OsFs); ok {
		realPath, err := filepath.EvalSymlinks(absPath)
		if err != nil {
			return "", errors.Wrapf(err, "resolve %s", rootPath)
		}
		return realPath, nil
	}
	return absPath, nil
}

// walkDir lists dirPath into parent. relPath is "" for the scan root.
func (w *Walker) walkDir(parent *tree.Node, dirPath, relPath string, depth int, opts Options) error {
	dirName := filepath.Base(dirPath)
	if relPath != "" {
		dirName = path.Base(relPath)
	}

	if maxDepth := opts.MaxDepth(dirName); depth >= maxDepth {
		level.Debug(w.Logger).Log("event", "depth.limit", "dir", displayPath(relPath), "depth", depth, "max", maxDepth)
		return nil
	}

	if w.Progress != nil {
		w.Progress.SetDirectory(dirPath)
	}

	names, err := w.readDirNames(dirPath)
	if err != nil {
		return err
	}

	for _, name := range names {
		entryPath := filepath.Join(dirPath, name)
		entryRelPath := name
		if relPath != "" {
			entryRelPath = relPath + "/" + name
		}

		if matchAny(opts.ExcludePatterns, entryRelPath) {
			level.Debug(w.Logger).Log("event", "entry.exclude", "path", entryRelPath)
			continue
		}

		info, err := w.FS.Stat(entryPath)
		if err != nil {
			return errors.Wrapf(err, "stat %s", entryPath)
		}

		switch {
		case info.IsDir():
			if !opts.IncludeEmptyDirectories {
				empty, err := w.isEmptyDir(entryPath)
				if err != nil {
					return err
				}
				if empty {
					level.Debug(w.Logger).Log("event", "dir.empty", "path", entryRelPath)
					continue
				}
			}

			if !utf8.ValidString(name) {
				return errors.Wrapf(ErrInvalidName, "%q", entryPath)
			}

			child := tree.NewDirectory(name, "")
			child.AbsolutePath = entryPath
			parent.AddChild(child)

			if err := w.walkDir(child, entryPath, entryRelPath, depth+1, opts); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if !opts.IncludeRootFiles && depth == 0 {
				continue
			}
			if matchAny(opts.ExcludeFiles, name) {
				level.Debug(w.Logger).Log("event", "file.exclude", "path", entryRelPath)
				continue
			}

			if !utf8.ValidString(name) {
				return errors.Wrapf(ErrInvalidName, "%q", entryPath)
			}

			child := tree.NewFile(name, "")
			child.AbsolutePath = entryPath
			parent.AddChild(child)
		default:
			level.Debug(w.Logger).Log("event", "entry.skip", "path", entryRelPath, "mode", info.Mode().String())
		}
	}

	return nil
}

func (w *Walker) readDirNames(dirPath string) ([]string, error) {
	dir, err := w.FS.Open(dirPath)
	if err != nil {
		return nil, errors.Wrapf(err, "open dir %s", dirPath)
	}
	defer dir.Close()

	names, err := dir.Readdirnames(-1)
	if err != nil {
		return nil, errors.Wrapf(err, "read dir %s", dirPath)
	}
	return names, nil
}

// isEmptyDir checks the raw listing, before any exclude pattern applies.
func (w *Walker) isEmptyDir(dirPath string) (bool, error) {
	dir, err := w.FS.Open(dirPath)
	if err != nil {
		return false, errors.Wrapf(err, "open dir %s", dirPath)
	}
	defer dir.Close()

	names, err := dir.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "read dir %s", dirPath)
	}
	return len(names) == 0, nil
}

// matchAny reports whether name matches one of the patterns. Patterns are
// checked with ValidatePattern when configuration is loaded, so a bad
// pattern here simply never matches.
func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func displayPath(relPath string) string {
	if relPath == "" {
		return tree.RootPath
	}
	return relPath
}
