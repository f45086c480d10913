// Package uploads orchestrates the bounded multi-image upload attached to a
// car form.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// MaxFiles caps how many images one session may carry.
const MaxFiles = 10

// ErrTooManyFiles rejects a selection that would push the session past the
// cap. The whole batch is refused, never truncated.
var ErrTooManyFiles = errors.New("you can only upload a maximum of 10 images")

// File is one pending upload.
type File struct {
	Name string
	Data io.Reader
}

// Result is the per-file upload outcome, in input order. Either URL or Err
// is set.
type Result struct {
	Name string
	URL  string
	Err  error
}

// Session accumulates files for one form and uploads them as a unit. It
// lives exactly as long as the owning form.
type Session struct {
	store    ObjectStore
	prefix   string
	files    []File
	previews []string
	now      func() time.Time
}

// NewSession scopes uploads under the owner's directory.
func NewSession(store ObjectStore, ownerID string) *Session {
	return &Session{
		store:  store,
		prefix: "cars/" + ownerID + "/",
		now:    time.Now,
	}
}

// Add stages files for upload. A batch that would exceed MaxFiles leaves the
// session unchanged and returns ErrTooManyFiles.
func (s *Session) Add(files ...File) error {
	if len(s.files)+len(files) > MaxFiles {
		return ErrTooManyFiles
	}
	for _, f := range files {
		s.files = append(s.files, f)
		s.previews = append(s.previews, previewRef(len(s.previews), f.Name))
	}
	return nil
}

func (s *Session) Len() int { return len(s.files) }

// Previews returns a local reference per staged file, available regardless
// of upload outcome.
func (s *Session) Previews() []string {
	return append([]string(nil), s.previews...)
}

// Upload pushes the staged files one at a time, keeping input order, and
// returns a per-file result set. It stops at the first failure; files
// already uploaded are not rolled back, and their URLs remain in the
// results.
func (s *Session) Upload(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(s.files))

	for _, f := range s.files {
		objectPath := s.prefix + strconv.FormatInt(s.now().UnixNano(), 10) + "_" + f.Name
		url, err := s.store.Put(ctx, objectPath, f.Data)
		if err != nil {
			results = append(results, Result{Name: f.Name, Err: err})
			return results, fmt.Errorf("upload %s: %w", f.Name, err)
		}
		results = append(results, Result{Name: f.Name, URL: url})
	}

	return results, nil
}

// URLs extracts the uploaded URLs from a fully successful result set, in
// the same order as the input files.
func URLs(results []Result) []string {
	urls := make([]string, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

func previewRef(index int, name string) string {
	return fmt.Sprintf("preview://%d/%s", index, name)
}
