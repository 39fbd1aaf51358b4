package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/common"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
	"github.com/joseph-ayodele/rspl-generator/internal/export"
	"github.com/joseph-ayodele/rspl-generator/internal/extract"
	"github.com/joseph-ayodele/rspl-generator/internal/pipeline"
)

const (
	maxJSONBody      = 64 << 10
	multipartMemory  = 8 << 20
	multipartSlack   = 1 << 20
	formFieldDoc     = "document"
	formFieldBrand   = "brand"
	formFieldEquip   = "equipment_type"
	mediaMultipart   = "multipart/form-data"
	mediaFormEncoded = "application/x-www-form-urlencoded"
)

type createJobJSON struct {
	Brand         string `json:"brand"`
	EquipmentType string `json:"equipment_type"`
}

type createJobResponse struct {
	ID     string              `json:"id"`
	Status constants.JobStatus `json:"status"`
}

// jobView is a job snapshot plus its result counters.
type jobView struct {
	*entity.Job
	Summary export.Summary `json:"summary"`
}

func newJobView(j *entity.Job) jobView {
	return jobView{Job: j, Summary: export.Summarize(j)}
}

func (h *handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeCreate(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	job, err := h.jobs.Submit(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/jobs/"+job.ID)
	writeJSON(w, http.StatusAccepted, createJobResponse{ID: job.ID, Status: job.Status})
}

func (h *handler) decodeCreate(w http.ResponseWriter, r *http.Request) (pipeline.CreateRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case mediaMultipart:
		return h.decodeMultipart(w, r)
	case mediaFormEncoded:
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			return pipeline.CreateRequest{}, common.InvalidRequest("invalid form body: %v", err)
		}
		return pipeline.CreateRequest{
			Brand:         r.PostForm.Get(formFieldBrand),
			EquipmentType: r.PostForm.Get(formFieldEquip),
		}, nil
	default:
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		var body createJobJSON
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return pipeline.CreateRequest{}, common.InvalidRequest("invalid request body: %v", err)
		}
		return pipeline.CreateRequest{Brand: body.Brand, EquipmentType: body.EquipmentType}, nil
	}
}

func (h *handler) decodeMultipart(w http.ResponseWriter, r *http.Request) (pipeline.CreateRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartSlack)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pipeline.CreateRequest{}, common.InvalidRequest("document exceeds %d bytes", h.maxBytes)
		}
		return pipeline.CreateRequest{}, common.InvalidRequest("invalid multipart body: %v", err)
	}
	req := pipeline.CreateRequest{
		Brand:         r.FormValue(formFieldBrand),
		EquipmentType: r.FormValue(formFieldEquip),
	}

	file, hdr, err := r.FormFile(formFieldDoc)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, nil
	case err != nil:
		return req, common.InvalidRequest("read document: %v", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, common.InvalidRequest("read document: %v", err)
	}
	req.Document = &extract.Document{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}
	return req, nil
}

func (h *handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListJobs(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, newJobView(j))
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": out})
}

func (h *handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newJobView(job))
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	doc, err := h.jobs.Export(r.Context(), chi.URLParam(r, "id"), format)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		h.log.Warn("http.export.write_error", "filename", doc.Filename, "error", err)
	}
}
