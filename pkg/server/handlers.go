package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blackcoderx/docuapi/pkg/core"
	"github.com/blackcoderx/docuapi/pkg/document"
	"github.com/blackcoderx/docuapi/pkg/llm"
	"github.com/blackcoderx/docuapi/pkg/logger"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/blackcoderx/docuapi/pkg/variables"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// credentialInput is a user-supplied value. Values may arrive as numbers.
type credentialInput struct {
	Name  string `json:"name" binding:"required"`
	Value any    `json:"value"`
}

// variableValues holds user-supplied variable values, which may arrive as
// numbers or booleans.
type variableValues map[string]any

func (vv variableValues) strings() map[string]string {
	out := make(map[string]string, len(vv))
	for name, raw := range vv {
		if v, ok := stringify(raw); ok {
			out[name] = v
		}
	}
	return out
}

type executeRequest struct {
	API         *storage.APIDescriptor `json:"api"`
	Credentials []credentialInput      `json:"credentials" binding:"dive"`
	Variables   variableValues         `json:"variables"`
}

type batchRequest struct {
	APIs        []storage.APIDescriptor `json:"apis"`
	Credentials []credentialInput       `json:"credentials" binding:"dive"`
	Variables   variableValues          `json:"variables"`
}

type validateRequest struct {
	API         *storage.APIDescriptor `json:"api"`
	Credentials []credentialInput      `json:"credentials" binding:"dive"`
	Variables   variableValues         `json:"variables"`
}

type scrapeRequest struct {
	URL          string `json:"url"`
	Model        string `json:"model"`
	CustomPrompt string `json:"customPrompt"`
}

type detectRequest struct {
	API  *storage.APIDescriptor `json:"api"`
	Text string                 `json:"text"`
}

type analysisMetadata struct {
	Document  storage.DocumentMetadata `json:"document"`
	Model     string                   `json:"model"`
	Tokens    storage.TokenUsage       `json:"tokens"`
	IsChunked bool                     `json:"isChunked"`
}

type analysisResponse struct {
	Credentials []storage.CredentialMention `json:"credentials"`
	APIs        []storage.AnalyzedAPI       `json:"apis"`
	Summary     string                      `json:"summary"`
	Metadata    analysisMetadata            `json:"metadata"`
}

func credentialMap(in []credentialInput) map[string]string {
	out := make(map[string]string, len(in))
	for _, cr := range in {
		if v, ok := stringify(cr.Value); ok {
			out[cr.Name] = v
		}
	}
	return out
}

// stringify renders a JSON scalar as text. Null yields false.
func stringify(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}

func fail(c *gin.Context, status int, message string, details ...string) {
	body := gin.H{"success": false, "error": message}
	if len(details) > 0 && details[0] != "" {
		body["details"] = details[0]
	}
	c.JSON(status, body)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "DocuAPI Intelligence Backend is running",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) listModels(c *gin.Context) {
	models := []llm.Model{}
	if s.models != nil {
		models = append(models, s.models.Models()...)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "models": models})
}

func (s *Server) uploadDocument(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "No se proporcionó ningún archivo")
		return
	}
	if !document.IsAllowedUpload(fh.Header.Get("Content-Type")) {
		fail(c, http.StatusBadRequest, "Tipo de archivo no soportado. Solo PDF, DOCX y TXT permitidos.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Error al procesar el documento", err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusBadRequest, "Error al procesar el documento", err.Error())
		return
	}

	rec, err := s.analyzer.AnalyzeDocument(c.Request.Context(), fh.Filename, data, c.PostForm("model"), c.PostForm("customPrompt"))
	if err != nil {
		s.analysisFailed(c, "Error al procesar el documento", err)
		return
	}
	s.analysisOK(c, rec)
}

func (s *Server) scrapeURL(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		fail(c, http.StatusBadRequest, "No se proporcionó ninguna URL")
		return
	}

	rec, err := s.analyzer.AnalyzeURL(c.Request.Context(), req.URL, req.Model, req.CustomPrompt)
	if err != nil {
		s.analysisFailed(c, "Error al procesar la URL", err)
		return
	}
	s.analysisOK(c, rec)
}

func (s *Server) analysisOK(c *gin.Context, rec *storage.AnalysisRecord) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"analysisId": rec.ID,
		"data": analysisResponse{
			Credentials: rec.Analysis.Credentials,
			APIs:        rec.Analysis.APIs,
			Summary:     rec.Analysis.Summary,
			Metadata: analysisMetadata{
				Document:  rec.DocumentMetadata,
				Model:     rec.ModelUsed,
				Tokens:    rec.TokensUsed,
				IsChunked: rec.IsChunked,
			},
		},
	})
}

// analysisFailed maps unreadable sources to 400 and model failures to 500.
func (s *Server) analysisFailed(c *gin.Context, message string, err error) {
	var srcErr *core.SourceError
	switch {
	case errors.Is(err, core.ErrNoDocument), errors.Is(err, core.ErrNoURL), errors.As(err, &srcErr):
		fail(c, http.StatusBadRequest, message, err.Error())
	default:
		logger.FromGin(c).Error("analysis failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, message, err.Error())
	}
}

func (s *Server) getAnalysis(c *gin.Context) {
	rec, err := s.analyzer.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrAnalysisNotFound) {
			fail(c, http.StatusNotFound, "Análisis no encontrado o expirado")
			return
		}
		logger.FromGin(c).Error("analysis lookup failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Error al obtener el análisis", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
}

func (s *Server) executeAPI(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.API == nil {
		fail(c, http.StatusBadRequest, "Datos de API incompletos")
		return
	}

	out := s.runner.Execute(c.Request.Context(), *req.API, credentialMap(req.Credentials), req.Variables.strings())
	if out.Failure == core.FailureIncompleteAPI {
		fail(c, http.StatusBadRequest, out.Error)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) executeBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.APIs) == 0 {
		fail(c, http.StatusBadRequest, "Se requiere un array de APIs")
		return
	}

	log := logger.FromGin(c)
	batch := core.NewBatch(s.runner,
		core.WithBatchDelay(s.opts.BatchDelay),
		core.WithBatchTimeout(s.opts.BatchTimeout),
		core.WithBatchLogger(log),
	)
	res, err := batch.Run(c.Request.Context(), req.APIs, credentialMap(req.Credentials), req.Variables.strings())
	if err != nil {
		if errors.Is(err, core.ErrEmptyBatch) {
			fail(c, http.StatusBadRequest, "Se requiere un array de APIs")
			return
		}
		log.Error("batch failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Error al ejecutar el lote", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
}

func (s *Server) validateAPI(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.API == nil {
		fail(c, http.StatusBadRequest, "No se proporcionó API para validar")
		return
	}

	values := credentialMap(req.Credentials)
	for k, v := range req.Variables.strings() {
		values[k] = v
	}

	v := core.ValidateAPI(*req.API)
	c.JSON(http.StatusOK, gin.H{
		"success":   v.IsValid,
		"isValid":   v.IsValid,
		"issues":    v.Issues,
		"warnings":  v.Warnings,
		"variables": variables.ValidateVariables(*req.API, values),
	})
}

func (s *Server) detectVariables(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.API == nil && req.Text == "") {
		fail(c, http.StatusBadRequest, "Se requiere una API o un texto")
		return
	}

	var names []string
	if req.API != nil {
		names = variables.DetectAPIVariables(*req.API)
	} else {
		names = variables.DetectVariables(req.Text)
	}
	if names == nil {
		names = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"variables":      names,
			"classification": s.classifier.Classify(names),
		},
	})
}

func (s *Server) defaultPrompt(c *gin.Context) {
	provider := c.DefaultQuery("provider", "claude")
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"prompt":   llm.DefaultPrompt,
		"provider": provider,
	})
}
