// Package scanner finds media files under a library root. Files are
// filtered by extension and ignore patterns; everything else about them is
// left to the parsing and organizing layers.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// multiEpisodeHint is a cheap marker for files that likely span several
// episodes, recorded at scan time so planners can sort them first.
var multiEpisodeHint = regexp.MustCompile(`(?i)E\d+E\d+`)

// File is a media file found during a scan.
type File struct {
	// Path is the absolute or root-relative path as encountered.
	Path string
	// Name is the base name including extension.
	Name string
	// Ext is the lowercased extension including the dot.
	Ext string
	// Size in bytes.
	Size int64
	// ModTime is the file's last modification time.
	ModTime time.Time
	// MultiEpisode is set when the name carries adjacent episode markers.
	MultiEpisode bool
}

// Scanner walks a directory tree for media files.
type Scanner struct {
	root    string
	allowed map[string]struct{}
	ignore  []*regexp.Regexp
	logger  zerolog.Logger
}

// Option configures a Scanner.
type Option func(*options)

type options struct {
	extensions []string
	ignore     []string
	logger     zerolog.Logger
}

// WithExtensions restricts the scan to the given extensions. Extensions are
// case-insensitive; a missing leading dot is added. An empty list allows
// every file.
func WithExtensions(extensions []string) Option {
	return func(o *options) {
		o.extensions = extensions
	}
}

// WithIgnorePatterns skips files whose base name matches any of the given
// regular expressions.
func WithIgnorePatterns(patterns []string) Option {
	return func(o *options) {
		o.ignore = patterns
	}
}

// WithLogger sets the logger used for scan diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Scanner rooted at root. Invalid ignore patterns are
// reported immediately rather than during the walk.
func New(root string, opts ...Option) (*Scanner, error) {
	if root == "" {
		return nil, fmt.Errorf("scan root is required")
	}

	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Scanner{
		root:   root,
		logger: o.logger,
	}

	if len(o.extensions) > 0 {
		s.allowed = make(map[string]struct{}, len(o.extensions))
		for _, ext := range o.extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			s.allowed[ext] = struct{}{}
		}
	}

	for _, pattern := range o.ignore {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		s.ignore = append(s.ignore, re)
	}

	return s, nil
}

// Root returns the directory the scanner walks.
func (s *Scanner) Root() string {
	return s.root
}

// Walk visits every matching media file under the root in lexical order.
// The walk stops at the first error from fn or when ctx is cancelled.
func (s *Scanner) Walk(ctx context.Context, fn func(File) error) error {
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if s.ignored(name) {
			s.logger.Trace().Str("path", path).Msg("Skipping ignored file")
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if s.allowed != nil {
			if _, ok := s.allowed[ext]; !ok {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable file")
			return nil
		}

		return fn(File{
			Path:         path,
			Name:         name,
			Ext:          ext,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			MultiEpisode: multiEpisodeHint.MatchString(name),
		})
	})
}

// Scan walks the root and returns all matching media files.
func (s *Scanner) Scan(ctx context.Context) ([]File, error) {
	var files []File
	err := s.Walk(ctx, func(f File) error {
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int("count", len(files)).Str("root", s.root).Msg("Scan complete")
	return files, nil
}

func (s *Scanner) ignored(name string) bool {
	for _, re := range s.ignore {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
