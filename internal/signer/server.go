// Package signer is the trusted intermediary for the proxy-mediated object
// store: it holds the long-lived credentials the client side must never see
// and exchanges them for short-lived signed URLs.
package signer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/FairForge/backplane/internal/config"
	"github.com/FairForge/backplane/internal/provider"
)

// Server implements the intermediary HTTP contract.
type Server struct {
	cfg       config.SignerConfig
	logger    *zap.Logger
	objects   ObjectAPI
	presigner PresignAPI
	limiter   *rate.Limiter
	router    chi.Router
}

// NewServer builds the intermediary with real S3 clients.
func NewServer(cfg config.SignerConfig, logger *zap.Logger) (*Server, error) {
	objects, presigner, err := newS3Clients(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithClients(cfg, logger, objects, presigner), nil
}

// NewServerWithClients builds the intermediary around injected clients.
func NewServerWithClients(cfg config.SignerConfig, logger *zap.Logger, objects ObjectAPI, presigner PresignAPI) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		objects:   objects,
		presigner: presigner,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
	}

	r := chi.NewRouter()
	r.Use(s.rateLimit)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/storage", func(r chi.Router) {
		r.Post("/presign-upload", s.instrument("presign-upload", s.handlePresignUpload))
		r.Post("/delete", s.instrument("delete", s.handleDelete))
		r.Post("/list", s.instrument("list", s.handleList))
		r.Get("/download", s.instrument("download", s.handleDownload))
	})
	s.router = r

	return s
}

// Handler returns the HTTP handler for mounting.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			rateLimited.Inc()
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the final status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type presignUploadRequest struct {
	Bucket      string `json:"bucket"`
	FileID      string `json:"fileId"`
	ContentType string `json:"contentType"`
	FileName    string `json:"fileName"`
}

// handlePresignUpload mints a single PUT authorization. The final file id is
// server-chosen: client-proposed ids are honored only when explicit.
func (s *Server) handlePresignUpload(w http.ResponseWriter, r *http.Request) {
	var req presignUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Bucket == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("bucket is required"))
		return
	}

	fileID := req.FileID
	if fileID == "" || fileID == provider.AutoID {
		fileID = uuid.New().String()
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(req.Bucket),
		Key:    aws.String(fileID),
	}
	if req.ContentType != "" {
		input.ContentType = aws.String(req.ContentType)
	}

	signed, err := s.presigner.PresignPutObject(r.Context(), input,
		func(o *s3.PresignOptions) { o.Expires = s.cfg.URLTTL })
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("presign put %s/%s: %w", req.Bucket, fileID, err))
		return
	}

	s.logger.Info("upload authorized",
		zap.String("bucket", req.Bucket),
		zap.String("file", fileID),
		zap.String("name", req.FileName))

	s.writeJSON(w, map[string]string{
		"uploadUrl":   signed.URL,
		"finalFileId": fileID,
	})
}

type deleteRequest struct {
	Bucket string `json:"bucket"`
	FileID string `json:"fileId"`
}

// handleDelete removes the object. Deleting an absent key succeeds, which
// keeps the adapter's idempotent delete contract intact end to end.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	_, err := s.objects.DeleteObject(r.Context(), &s3.DeleteObjectInput{
		Bucket: aws.String(req.Bucket),
		Key:    aws.String(req.FileID),
	})
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("delete %s/%s: %w", req.Bucket, req.FileID, err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type listHTTPRequest struct {
	Bucket  string           `json:"bucket"`
	Queries []provider.Query `json:"queries"`
}

type listedFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var req listHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	out, err := s.objects.ListObjectsV2(r.Context(), &s3.ListObjectsV2Input{
		Bucket: aws.String(req.Bucket),
	})
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("list %s: %w", req.Bucket, err))
		return
	}

	files := make([]listedFile, 0, len(out.Contents))
	for _, obj := range out.Contents {
		files = append(files, listedFile{
			ID:   aws.ToString(obj.Key),
			Name: aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
		})
	}
	total := len(files)
	files = applyPagination(files, req.Queries)

	s.writeJSON(w, map[string]any{"files": files, "total": total})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	bucket := r.URL.Query().Get("bucket")
	file := r.URL.Query().Get("file")
	if bucket == "" || file == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("bucket and file are required"))
		return
	}

	signed, err := s.presigner.PresignGetObject(r.Context(), &s3.GetObjectInput{
		Bucket:                     aws.String(bucket),
		Key:                        aws.String(file),
		ResponseContentDisposition: aws.String("attachment"),
	}, func(o *s3.PresignOptions) { o.Expires = s.cfg.URLTTL })
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("presign get %s/%s: %w", bucket, file, err))
		return
	}

	s.writeJSON(w, map[string]string{
		"url":     signed.URL,
		"expires": time.Now().Add(s.cfg.URLTTL).Format(time.RFC3339),
	})
}

// applyPagination honors limit/offset directives; other directives are
// ignored here since the store cannot evaluate them server-side.
func applyPagination(files []listedFile, queries []provider.Query) []listedFile {
	offset, limit := 0, -1
	for _, q := range queries {
		switch q.Kind {
		case provider.KindOffset:
			offset = q.Count
		case provider.KindLimit:
			limit = q.Count
		}
	}
	if offset > 0 {
		if offset >= len(files) {
			return []listedFile{}
		}
		files = files[offset:]
	}
	if limit >= 0 && limit < len(files) {
		files = files[:limit]
	}
	return files
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("signer request failed", zap.Int("status", status), zap.Error(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
