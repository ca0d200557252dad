package server

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/rolodex/internal/export"
	"github.com/alfredjeanlab/rolodex/internal/model"
)

// handleListRecords handles GET /api/{entity}/list.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	entity, ok := pathEntity(w, r)
	if !ok {
		return
	}
	records, ok := s.listRecords(w, r, entity, filterFromQuery(queryParams(r)))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleExportXML handles GET /api/{entity}/export.xml.
func (s *Server) handleExportXML(w http.ResponseWriter, r *http.Request) {
	entity, ok := pathEntity(w, r)
	if !ok {
		return
	}
	params := queryParams(r)
	opts, err := s.exportOptions(entity, params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, ok := s.listRecords(w, r, entity, filterFromQuery(params))
	if !ok {
		return
	}

	dl := &download{w: w}
	a, err := export.NewExporter(dl).Export(r.Context(), model.Items(records), opts)
	s.finishExport(w, r, dl, entity, "xml", len(records), a, err)
}

// handleExportCSV handles GET /api/{entity}/export.csv.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	entity, ok := pathEntity(w, r)
	if !ok {
		return
	}
	records, ok := s.listRecords(w, r, entity, filterFromQuery(queryParams(r)))
	if !ok {
		return
	}

	dl := &download{w: w}
	filename := export.DatedFilename(entity.String(), s.now(), "csv")
	a, err := export.NewExporter(dl).ExportCSV(r.Context(), entity, records, filename)
	s.finishExport(w, r, dl, entity, "csv", len(records), a, err)
}

// listRecords runs the store query, writing a generic 500 on failure. The
// returned slice is never nil so an empty result encodes as [].
func (s *Server) listRecords(w http.ResponseWriter, r *http.Request, entity model.Entity, filter model.RecordFilter) ([]*model.Record, bool) {
	records, err := s.store.ListRecords(r.Context(), entity, filter)
	if err != nil {
		s.logger.Error("list records failed",
			"entity", entity,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list %s", entity))
		return nil, false
	}
	if records == nil {
		records = []*model.Record{}
	}
	return records, true
}

// exportOptions builds document options from the entity defaults, the
// server envelope and the metadata, company, author, version, root and item
// query parameters.
func (s *Server) exportOptions(entity model.Entity, params map[string]string) (export.Options, error) {
	opts := export.ForEntity(entity, s.now())
	opts.Company = s.envelope.Company
	opts.ExportedBy = s.envelope.ExportedBy
	opts.Version = s.envelope.Version

	if v, ok := params["metadata"]; ok && v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return export.Options{}, inputError(fmt.Sprintf("invalid metadata value %q", v))
		}
		opts.IncludeMetadata = on
	}
	for key, dst := range map[string]*string{
		"company": &opts.Company,
		"author":  &opts.ExportedBy,
		"version": &opts.Version,
		"root":    &opts.RootElement,
		"item":    &opts.ItemElement,
	} {
		if v := params[key]; v != "" {
			*dst = v
		}
	}
	for _, name := range []string{opts.RootElement, opts.ItemElement} {
		if err := export.ValidateName(name); err != nil {
			return export.Options{}, inputError(err.Error())
		}
	}
	return opts, nil
}

// finishExport maps the exporter result to the response, records metrics
// and publishes the export event.
func (s *Server) finishExport(w http.ResponseWriter, r *http.Request, dl *download, entity model.Entity, format string, n int, a export.Artifact, err error) {
	ctx := r.Context()
	switch {
	case err == nil:
		s.metrics.exports.WithLabelValues(entity.String(), format, "ok").Inc()
		s.publishCompleted(ctx, entity, a, n)
	case errors.Is(err, export.ErrNoData):
		s.metrics.exports.WithLabelValues(entity.String(), format, "empty").Inc()
		writeError(w, http.StatusNotFound, export.ErrNoData.Error())
	default:
		s.metrics.exports.WithLabelValues(entity.String(), format, "error").Inc()
		s.logger.Error("export failed",
			"entity", entity,
			"format", format,
			"request_id", RequestIDFromContext(ctx),
			"error", err,
		)
		s.publishFailed(ctx, entity, err)
		if !dl.started {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to export %s", entity))
		}
	}
}

// download delivers an export artifact as an attachment response.
type download struct {
	w       http.ResponseWriter
	started bool
}

func (d *download) Deliver(_ context.Context, a export.Artifact) error {
	h := d.w.Header()
	h.Set("Content-Type", a.ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	h.Set("Content-Length", strconv.Itoa(len(a.Data)))
	d.started = true
	d.w.WriteHeader(http.StatusOK)
	_, err := d.w.Write(a.Data)
	return err
}
