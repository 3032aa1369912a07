// Package asset provides uniform read access to index files wherever they
// live; local paths and http/https URLs open into the same Resource type.
package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Resource is a streamable local file or remote object. The caller owns the
// embedded stream and must close it.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Path returns the location this resource was opened from.
func (r *Resource) Path() string {
	return r.url.String()
}

// RemotePath returns the base name of a remote resource's URL path. For
// local resources it is equivalent to Path.
func (r *Resource) RemotePath() string {
	if r.IsRemote() {
		return filepath.Base(r.url.Path)
	}
	return r.Path()
}

// IsRemote reports whether the resource streams over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// NewResource opens a streamable resource. Scheme-less paths open as local
// files while http/https URLs are fetched over the network. When relTo is
// given and the path carries no scheme, the path is resolved relative to
// relTo's location, so an index can reference sibling files no matter where
// the set is hosted.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	// Windows-style separators would otherwise confuse the URL parser.
	target, err := url.Parse(strings.ReplaceAll(pathToResource, `\`, `/`))
	if err != nil {
		return nil, err
	}

	if target.Scheme == "" && relTo != nil {
		if target, err = rebase(target.Path, relTo); err != nil {
			return nil, err
		}
	}

	var stream io.ReadCloser
	switch target.Scheme {
	case "":
		if stream, err = os.Open(filepath.Clean(target.Path)); err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := http.Get(target.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %s", target.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", target.String(), resp.StatusCode)
		}
		stream = resp.Body
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", target.Scheme)
	}

	return &Resource{
		ReadCloser: stream,
		url:        target,
	}, nil
}

// rebase resolves path against the directory holding parent, keeping the
// parent's scheme and host.
func rebase(path string, parent *Resource) (*url.URL, error) {
	base, err := url.Parse(parent.url.String())
	if err != nil {
		return nil, err
	}

	prefix := base.Path
	if base.Scheme == "" {
		if prefix, err = filepath.Abs(parent.url.String()); err != nil {
			return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", parent.url.String(), err.Error())
		}
	}
	base.Path = filepath.Dir(prefix) + "/" + path
	return base, nil
}

// NewResourceFromStream wraps an in-memory reader as a named resource.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	loc, _ := url.Parse(name)
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        loc,
	}
}
