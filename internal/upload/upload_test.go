package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadApp(uploadPath string) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: MaxImageSize + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Post("/uploads/images", ImageHandler(uploadPath))
	return app
}

func multipartImage(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doUpload(t *testing.T, app *fiber.App, field, filename string, content []byte) (int, map[string]string) {
	t.Helper()
	body, contentType := multipartImage(t, field, filename, content)
	req := httptest.NewRequest("POST", "/uploads/images", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]string{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestImageUploadStoresUnderUUIDName(t *testing.T) {
	dir := t.TempDir()
	app := newUploadApp(dir)

	status, out := doUpload(t, app, "image", "leaf-photo.JPG", []byte("fake image bytes"))
	require.Equal(t, http.StatusCreated, status)

	path := out["path"]
	require.True(t, strings.HasPrefix(path, "/uploads/"), "path %q", path)
	assert.True(t, strings.HasSuffix(path, ".jpg"), "extension is lowercased: %q", path)
	assert.NotContains(t, path, "leaf-photo", "original filename must not leak")

	stored := filepath.Join(dir, strings.TrimPrefix(path, "/uploads/"))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake image bytes"), data)
}

func TestImageUploadRejectsDisallowedExtension(t *testing.T) {
	app := newUploadApp(t.TempDir())

	status, out := doUpload(t, app, "image", "script.svg", []byte("<svg/>"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Only jpg, jpeg and png images are allowed", out["error"])

	status, _ = doUpload(t, app, "image", "noextension", []byte("data"))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestImageUploadRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	app := newUploadApp(dir)

	big := bytes.Repeat([]byte("x"), MaxImageSize+1)
	status, out := doUpload(t, app, "image", "huge.png", big)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Image exceeds the 5 MB limit", out["error"])

	// Nothing written.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImageUploadRequiresImageField(t *testing.T) {
	app := newUploadApp(t.TempDir())

	status, out := doUpload(t, app, "file", "photo.png", []byte("data"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "image file is required", out["error"])
}
