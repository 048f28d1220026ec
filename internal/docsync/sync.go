package docsync

import (
	"os"
	"path/filepath"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"dirdoc/internal/compare"
	"dirdoc/internal/config"
	"dirdoc/internal/hash"
	"dirdoc/internal/logger"
	"dirdoc/internal/tree"
	"dirdoc/internal/validate"
	"dirdoc/internal/walker"
)

// SelfDescription is given to the document's own entry when it is first
// created inside the scanned directory.
const SelfDescription = "Directory structure definition file"

type Status string

const (
	Created   Status = "created"
	Updated   Status = "updated"
	Unchanged Status = "unchanged"
)

type Options struct {
	// Root overrides the configured scan root when set.
	Root string
	// Output is the document path; its extension picks the format.
	Output string
	// ScanOnly skips comparison and validation.
	ScanOnly bool
	Pretty   bool
	// DryRun builds the document without writing it.
	DryRun bool
}

type Result struct {
	Status Status
	Output string
	Tree   *tree.Node
	// Diff is nil when no prior document was compared.
	Diff *compare.Result
	// Validation is nil when validation was skipped.
	Validation *validate.Result
	// PriorInvalid is set when a prior document existed but could not be
	// parsed and was replaced.
	PriorInvalid bool

	Document            []byte
	PreviousDocument    []byte
	Fingerprint         string
	PreviousFingerprint string
}

// DocumentChanged reports whether the new document differs byte-wise from
// the prior one.
func (r *Result) DocumentChanged() bool {
	return r.Fingerprint != r.PreviousFingerprint
}

// Syncer keeps a tree document in step with the directory it describes.
// It is not safe for concurrent use on the same output.
type Syncer struct {
	FS       afero.Fs
	Logger   log.Logger
	Config   *config.Config
	Progress walker.Progress
}

func New(fs afero.Fs, cfg *config.Config, logger log.Logger) *Syncer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Syncer{FS: fs, Config: cfg, Logger: logger}
}

// Sync scans the root, folds in descriptions from any prior document and
// writes the result.
func (s *Syncer) Sync(opts Options) (*Result, error) {
	debug := level.Debug(s.logger())
	root := opts.Root
	if root == "" {
		root = s.Config.Scan.Root
	}
	output := opts.Output
	if output == "" {
		output = config.DefaultDocument
	}

	w := walker.New(s.FS, s.Logger)
	w.Progress = s.Progress
	actual, err := w.Walk(root, s.Config.ScanOptions())
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	debug.Log("event", "scan.done", "root", actual.AbsolutePath, "entries", actual.Len())

	result := &Result{Status: Created, Output: output, Tree: actual}

	recorded, err := s.loadPrior(output, result)
	if err != nil {
		return nil, err
	}

	if recorded != nil {
		result.Status = Unchanged
		if !opts.ScanOnly {
			result.Diff = compare.Compare(recorded, actual, s.Config.Validation.MinDescriptionLength)
			if result.Diff.HasDiscrepancies() {
				result.Status = Updated
			}
			debug.Log("event", "compare.done",
				"missing_in_actual", len(result.Diff.MissingInActual),
				"missing_in_recorded", len(result.Diff.MissingInRecorded))
		}
		compare.TransferDescriptions(recorded, actual)

		if !opts.ScanOnly {
			result.Validation = validate.Validate(actual, s.Config.ValidationOptions())
			debug.Log("event", "validate.done", "pass", result.Validation.Pass)
		}
	} else if err := s.addSelfEntry(actual, root, output); err != nil {
		return nil, err
	}

	tree.Sort(actual)

	result.Document, err = tree.Encode(actual, tree.FormatFor(output), opts.Pretty)
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	result.Fingerprint = hash.Fingerprint(result.Document)

	if opts.DryRun {
		debug.Log("event", "write.skip", "output", output)
		return result, nil
	}

	if err := s.write(output, result.Document); err != nil {
		return nil, err
	}

	written, err := hash.FingerprintFile(s.FS, output)
	if err != nil {
		return nil, err
	}
	result.Fingerprint = written

	level.Info(s.logger()).Log("event", "document.write", "output", output, "status", result.Status, "changed", result.DocumentChanged())
	return result, nil
}

// loadPrior returns the recorded tree, or nil when the document is missing
// or unreadable as a tree.
func (s *Syncer) loadPrior(output string, result *Result) (*tree.Node, error) {
	data, err := afero.ReadFile(s.FS, output)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read %s", output)
	}
	result.PreviousDocument = data
	result.PreviousFingerprint = hash.Fingerprint(data)

	recorded, err := tree.Decode(data, tree.FormatFor(output))
	if err != nil {
		if errors.Is(err, tree.ErrParse) {
			level.Warn(s.logger()).Log("msg", "existing document could not be parsed, recreating it", "output", output, "err", err)
			result.PriorInvalid = true
			return nil, nil
		}
		return nil, errors.Wrapf(err, "decode %s", output)
	}
	return recorded, nil
}

// addSelfEntry lists a freshly created document inside the tree when it is
// written straight into the scanned directory.
func (s *Syncer) addSelfEntry(actual *tree.Node, root, output string) error {
	absOutput, err := filepath.Abs(output)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", output)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", root)
	}

	dir := filepath.Dir(absOutput)
	if dir != absRoot && dir != actual.AbsolutePath {
		return nil
	}

	name := filepath.Base(absOutput)
	if actual.Child(name, tree.File) != nil {
		return nil
	}

	self := tree.NewFile(name, SelfDescription)
	self.AbsolutePath = absOutput
	actual.AddChild(self)
	return nil
}

func (s *Syncer) write(output string, data []byte) error {
	if dir := filepath.Dir(output); dir != "." {
		if err := s.FS.MkdirAll(dir, 0755); err != nil {
			return &tree.WriteError{Path: output, Err: err}
		}
	}
	return tree.Save(s.FS, output, data)
}

// ValidateDocument checks an existing document without scanning. A missing
// or malformed document is an error here.
func (s *Syncer) ValidateDocument(path string) (*validate.Result, *tree.Node, error) {
	if path == "" {
		path = config.DefaultDocument
	}

	root, err := tree.Load(s.FS, path)
	if err != nil {
		return nil, nil, err
	}

	result := validate.Validate(root, s.Config.ValidationOptions())
	level.Debug(s.logger()).Log("event", "validate.done", "document", path, "pass", result.Pass)
	return result, root, nil
}

func (s *Syncer) logger() log.Logger {
	return logger.OrNop(s.Logger)
}
