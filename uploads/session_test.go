package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records puts and can be told to fail from a given call on.
type fakeStore struct {
	paths  []string
	failAt int // 1-based call number to start failing at; 0 never fails
}

func (f *fakeStore) Put(ctx context.Context, objectPath string, r io.Reader) (string, error) {
	if f.failAt > 0 && len(f.paths)+1 >= f.failAt {
		return "", errors.New("storage unavailable")
	}
	f.paths = append(f.paths, objectPath)
	return "https://fake.example.com/" + objectPath, nil
}

func file(name string) File {
	return File{Name: name, Data: strings.NewReader("data-" + name)}
}

func files(n int) []File {
	out := make([]File, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, file(fmt.Sprintf("img-%d.jpg", i)))
	}
	return out
}

func TestAddWithinCap(t *testing.T) {
	s := NewSession(&fakeStore{}, "owner-1")
	require.NoError(t, s.Add(files(10)...))
	assert.Equal(t, 10, s.Len())
}

func TestAddBeyondCapRejectsWholeBatch(t *testing.T) {
	s := NewSession(&fakeStore{}, "owner-1")
	require.NoError(t, s.Add(files(6)...))

	err := s.Add(files(5)...)

	require.ErrorIs(t, err, ErrTooManyFiles)
	assert.Equal(t, 6, s.Len(), "rejected batch must not be partially added")
}

func TestAddElevenAtOnceRejected(t *testing.T) {
	s := NewSession(&fakeStore{}, "owner-1")
	err := s.Add(files(11)...)
	require.ErrorIs(t, err, ErrTooManyFiles)
	assert.Zero(t, s.Len())
}

func TestUploadPreservesOrder(t *testing.T) {
	store := &fakeStore{}
	s := NewSession(store, "owner-1")
	require.NoError(t, s.Add(file("a.jpg"), file("b.jpg"), file("c.jpg")))

	results, err := s.Upload(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a.jpg", results[0].Name)
	assert.Equal(t, "b.jpg", results[1].Name)
	assert.Equal(t, "c.jpg", results[2].Name)
	for i, r := range results {
		assert.NoError(t, r.Err)
		assert.Contains(t, r.URL, results[i].Name)
	}

	for _, p := range store.paths {
		assert.True(t, strings.HasPrefix(p, "cars/owner-1/"))
	}
}

func TestUploadStopsAtFirstFailure(t *testing.T) {
	s := NewSession(&fakeStore{failAt: 2}, "owner-1")
	require.NoError(t, s.Add(file("a.jpg"), file("b.jpg"), file("c.jpg")))

	results, err := s.Upload(context.Background())

	require.Error(t, err)
	require.Len(t, results, 2, "uploads stop after the first failure")
	assert.NoError(t, results[0].Err)
	assert.NotEmpty(t, results[0].URL, "already uploaded files are not rolled back")
	assert.Error(t, results[1].Err)
	assert.Empty(t, results[1].URL)
}

func TestURLsFromResults(t *testing.T) {
	s := NewSession(&fakeStore{}, "owner-1")
	require.NoError(t, s.Add(file("a.jpg"), file("b.jpg")))

	results, err := s.Upload(context.Background())
	require.NoError(t, err)

	urls := URLs(results)
	require.Len(t, urls, 2)
	assert.Contains(t, urls[0], "a.jpg")
	assert.Contains(t, urls[1], "b.jpg")
}

func TestPreviewsSurviveFailedUpload(t *testing.T) {
	s := NewSession(&fakeStore{failAt: 1}, "owner-1")
	require.NoError(t, s.Add(file("a.jpg"), file("b.jpg")))

	_, err := s.Upload(context.Background())
	require.Error(t, err)

	previews := s.Previews()
	require.Len(t, previews, 2)
	assert.Contains(t, previews[0], "a.jpg")
	assert.Contains(t, previews[1], "b.jpg")
}
