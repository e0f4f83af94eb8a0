package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/taskstack/taskboard/internal/db"
)

// Uploads larger than this are rejected before touching disk.
const maxUploadBytes = 32 << 20

func (a *API) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}

	attachments, err := a.store.ListAttachments(taskID)
	if err != nil {
		a.fail(w, err)
		return
	}

	payloads := make([]AttachmentPayload, len(attachments))
	for i := range attachments {
		payloads[i] = attachmentPayload(&attachments[i])
	}

	a.respond(w, http.StatusOK, true, fmt.Sprintf("Found %d attachments", len(payloads)), payloads)
}

// handleUploadAttachment accepts a multipart form with a "file" part,
// stores the file under the upload directory with a generated name, and
// records the metadata.
func (a *API) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.respond(w, http.StatusBadRequest, false, "request must be multipart form data with a 'file' part", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "missing 'file' part", nil)
		return
	}
	defer file.Close()

	storedName := uuid.NewString() + filepath.Ext(header.Filename)
	storagePath := filepath.Join(a.uploadDir, storedName)

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		a.fail(w, err)
		return
	}

	dst, err := os.Create(storagePath)
	if err != nil {
		a.fail(w, err)
		return
	}

	size, err := io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(storagePath)
		a.fail(w, err)
		return
	}

	attachment, err := a.store.CreateAttachment(taskID, &db.Attachment{
		StoredName:   storedName,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		SizeBytes:    size,
		StoragePath:  storagePath,
	})
	if err != nil {
		// The metadata write failed, so the stored file must not linger.
		os.Remove(storagePath)
		a.fail(w, err)
		return
	}

	a.log.Info().Uint("task_id", taskID).Str("file", header.Filename).Int64("bytes", size).Msg("attachment uploaded")
	a.respond(w, http.StatusCreated, true, fmt.Sprintf("Attachment '%s' uploaded", header.Filename), attachmentPayload(attachment))
}
