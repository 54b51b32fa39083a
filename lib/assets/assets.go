// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package assets

import (
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/zeebo/blake3"
)

//go:embed static
var embedded embed.FS

// Asset is one servable file.
type Asset struct {
	Name        string
	ContentType string
	ETag        string
	Data        []byte
}

// Bundle is an immutable index of assets keyed by slash-separated
// name relative to the bundle root (e.g. "app.js").
type Bundle struct {
	assets map[string]*Asset
}

// Load indexes the embedded client bundle.
func Load() (*Bundle, error) {
	root, err := fs.Sub(embedded, "static")
	if err != nil {
		return nil, fmt.Errorf("opening embedded assets: %w", err)
	}
	return New(root)
}

// New indexes every regular file in fsys.
func New(fsys fs.FS) (*Bundle, error) {
	bundle := &Bundle{assets: make(map[string]*Asset)}
	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading asset %s: %w", name, err)
		}
		digest := blake3.Sum256(data)
		bundle.assets[name] = &Asset{
			Name:        name,
			ContentType: contentType(name),
			ETag:        `"` + hex.EncodeToString(digest[:]) + `"`,
			Data:        data,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bundle, nil
}

func contentType(name string) string {
	if kind := mime.TypeByExtension(path.Ext(name)); kind != "" {
		return kind
	}
	return "application/octet-stream"
}

// Lookup returns the asset for name. Leading slashes and dot segments
// are cleaned away, so a request path can be passed directly.
func (b *Bundle) Lookup(name string) (*Asset, bool) {
	cleaned := strings.TrimPrefix(path.Clean("/"+name), "/")
	asset, ok := b.assets[cleaned]
	return asset, ok
}

// Names returns the indexed asset names in no particular order.
func (b *Bundle) Names() []string {
	names := make([]string, 0, len(b.assets))
	for name := range b.assets {
		names = append(names, name)
	}
	return names
}

// Serve writes the named asset, or 404 if there is none. A request
// whose If-None-Match carries the asset's ETag gets 304 with no body.
func (b *Bundle) Serve(w http.ResponseWriter, r *http.Request, name string) {
	asset, ok := b.Lookup(name)
	if !ok {
		http.Error(w, "404 Not Found", http.StatusNotFound)
		return
	}

	header := w.Header()
	header.Set("ETag", asset.ETag)
	header.Set("Cache-Control", "no-cache")
	if matchesETag(r.Header.Get("If-None-Match"), asset.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	header.Set("Content-Type", asset.ContentType)
	header.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(asset.Data)
	}
}

// Handler returns an http.Handler that always serves name.
func (b *Bundle) Handler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.Serve(w, r, name)
	})
}

// matchesETag reports whether an If-None-Match header value lists
// etag or "*". Weak validators match their strong form.
func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
