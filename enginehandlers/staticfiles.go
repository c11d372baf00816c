package enginehandlers

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/hentesoposszum/toldi/engine"
)

// ErrNoFilesystem is returned when StaticFilesConfig.FS is nil.
var ErrNoFilesystem = errors.New("no filesystem provided")

// StaticFilesConfig configures static file registration.
type StaticFilesConfig struct {
	// FS is the filesystem to serve from, typically an embed.FS or
	// os.DirFS. Required.
	FS fs.FS

	// Root is the directory within FS to walk. Defaults to ".".
	Root string

	// Prefix is prepended to every registered route path. Defaults to "/".
	Prefix string

	// IndexFile names the file that is additionally registered at its
	// directory path. Defaults to "index.html".
	IndexFile string
}

// RegisterStaticFiles walks the filesystem and registers a GET route per
// file on the engine. The content type is derived from the file extension.
// Files named after IndexFile are also registered at their directory path,
// so "docs/index.html" serves both /docs/index.html and /docs.
//
// Registration is eager, so the route set reflects the filesystem as it was
// at call time. Files added to the filesystem later are not picked up.
func RegisterStaticFiles(e *engine.Engine, cfg StaticFilesConfig) error {
	if cfg.FS == nil {
		return ErrNoFilesystem
	}

	root := cfg.Root
	if root == "" {
		root = "."
	}

	prefix := strings.TrimSuffix(cfg.Prefix, "/")

	indexFile := cfg.IndexFile
	if indexFile == "" {
		indexFile = "index.html"
	}

	return fs.WalkDir(cfg.FS, root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		rel := name
		if root != "." {
			rel = strings.TrimPrefix(name, root+"/")
		}

		routePath := prefix + "/" + rel
		handler := serveFile(cfg.FS, name)

		e.GET(routePath, handler)

		if path.Base(rel) == indexFile {
			dirPath := prefix + "/" + path.Dir(rel)
			if path.Dir(rel) == "." {
				dirPath = prefix + "/"
			}

			e.GET(dirPath, handler)
		}

		return nil
	})
}

// serveFile returns a handler that reads the named file from fsys on each
// request and writes it with the content type matching its extension.
func serveFile(fsys fs.FS, name string) engine.HandlerFunc {
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return func(c *engine.Context) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			c.ReportError(err)
			c.Fail(engine.CodeInternal)
			return
		}

		c.Header("Content-Type", contentType)
		c.Status(http.StatusOK)
		c.Writer().Write(data)
	}
}
