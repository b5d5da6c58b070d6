// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// Shell serves the pre-built browser shell. Asset requests get the file;
// page requests get index.html and the shell routes on the client.
type Shell struct {
	index string
	files http.Handler
}

// NewShell serves the shell found in dir, which must contain index.html.
func NewShell(dir string) (*Shell, error) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return nil, fmt.Errorf("shell: %w", err)
	}

	return &Shell{index: index, files: http.FileServer(http.Dir(dir))}, nil
}

func (shell *Shell) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if path.Ext(request.URL.Path) != "" {
		shell.files.ServeHTTP(writer, request)
		return
	}

	writer.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(writer, request, shell.index)
}
