package httpserver

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"tartanmarket/internal/config"
	"tartanmarket/internal/ids"
)

var allowedImageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

type uploadResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UploadRoutes returns a sub-router for image upload and serving. Uploads
// accept multiple files under the "images" field; each file succeeds or
// fails independently so one bad file never blocks the rest.
func UploadRoutes(cfg *config.Config) chi.Router {
	r := chi.NewRouter()

	r.Post("/images", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(cfg.MaxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse multipart form"})
			return
		}
		files := r.MultipartForm.File["images"]
		if len(files) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no files in 'images' field"})
			return
		}

		results := make([]uploadResult, 0, len(files))
		anyOK := false
		for _, header := range files {
			res := saveImage(cfg, header)
			if res.Error == "" {
				anyOK = true
			}
			results = append(results, res)
		}

		status := http.StatusOK
		if !anyOK {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]any{"results": results})
	})

	// Serves stored images; URLs returned above point here.
	r.Get("/{filename}", func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		if filename == "" {
			http.Error(w, "missing filename", http.StatusBadRequest)
			return
		}
		// Prevent path traversal by refusing anything with separators.
		if filepath.Base(filename) != filename {
			http.Error(w, "invalid filename", http.StatusBadRequest)
			return
		}
		http.ServeFile(w, r, filepath.Join(cfg.UploadDir, filename))
	})

	return r
}

func saveImage(cfg *config.Config, header *multipart.FileHeader) uploadResult {
	res := uploadResult{Filename: header.Filename}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedImageExts[ext]; !ok {
		res.Error = fmt.Sprintf("unsupported file type %q", ext)
		return res
	}
	if header.Size > cfg.MaxUploadBytes {
		res.Error = "file too large"
		return res
	}

	file, err := header.Open()
	if err != nil {
		res.Error = "could not read file"
		return res
	}
	defer file.Close()

	stored := ids.New() + ext
	destPath := filepath.Join(cfg.UploadDir, stored)

	out, err := os.Create(destPath)
	if err != nil {
		res.Error = "could not store file"
		return res
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(destPath)
		res.Error = "could not store file"
		return res
	}

	res.URL = "/api/upload/" + stored
	return res
}
