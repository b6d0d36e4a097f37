package httpadapter

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

func (rt *Router) ingestDocument(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Ingestor == nil {
		writeError(w, r, unavailable("ingest document"))
		return
	}

	file, header, err := rt.formFile(w, r, "file")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer file.Close()

	result, err := rt.svc.Ingestor.Ingest(r.Context(), domain.UploadRequest{
		OwnerID: ownerFrom(r),
		Meta:    metaFrom(header),
		Body:    file,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Documents == nil {
		writeError(w, r, unavailable("list documents"))
		return
	}
	owner := ownerFrom(r)
	if owner == "" {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "list documents", errors.New(ownerHeader+" header is required")))
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := rt.svc.Documents.ListRecent(r.Context(), owner, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []domain.DocumentRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Documents == nil {
		writeError(w, r, unavailable("get document"))
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))

	doc, err := rt.svc.Documents.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Records of other owners are reported as missing.
	if owner := ownerFrom(r); owner != "" && doc.OwnerID != owner {
		writeError(w, r, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id="+id)))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) reanalyzeDocument(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Reanalysis == nil {
		writeError(w, r, unavailable("reanalyze document"))
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if err := rt.svc.Reanalysis.Schedule(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"document_id": id,
		"status":      "queued",
	})
}

func (rt *Router) compareDocuments(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Comparer == nil {
		writeError(w, r, unavailable("compare documents"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 2*rt.maxUpload()+multipartOverhead)
	left, leftHeader, err := rt.formFile(nil, r, "file1")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer left.Close()
	right, rightHeader, err := rt.formFile(nil, r, "file2")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer right.Close()

	result, err := rt.svc.Comparer.Compare(r.Context(),
		domain.UploadRequest{OwnerID: ownerFrom(r), Meta: metaFrom(leftHeader), Body: left},
		domain.UploadRequest{OwnerID: ownerFrom(r), Meta: metaFrom(rightHeader), Body: right},
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// formFile caps the body when w is non-nil and maps multipart failures to
// validation errors.
func (rt *Router) formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if w != nil {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxUpload()+multipartOverhead)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, domain.WrapError(domain.ErrInvalidInput, "read upload", domain.ErrFileTooLarge)
		}
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "read upload", domain.ErrNoFile)
	}
	return file, header, nil
}

func (rt *Router) maxUpload() int64 {
	if rt.cfg.MaxFileSize > 0 {
		return rt.cfg.MaxFileSize
	}
	return 10 << 20
}

func metaFrom(header *multipart.FileHeader) domain.FileMeta {
	return domain.FileMeta{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
	}
}
