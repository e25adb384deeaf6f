package http

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/edusummarize/internal/auth"
	"github.com/nguyentantai21042004/edusummarize/internal/export"
	"github.com/nguyentantai21042004/edusummarize/internal/history"
	"github.com/nguyentantai21042004/edusummarize/internal/logger"
	"github.com/nguyentantai21042004/edusummarize/internal/processor"
)

const identityKey = "identity"

// HistoryStore is the part of history.Store the API serves.
type HistoryStore interface {
	List(ctx context.Context, userID string) ([]history.Record, error)
	Get(ctx context.Context, userID, videoURL string) (history.Record, bool, error)
	Delete(ctx context.Context, userID, videoURL string) (bool, error)
}

type API struct {
	proc     processor.Processor
	store    HistoryStore
	verifier auth.Verifier
	logger   logger.Logger
}

func NewAPI(proc processor.Processor, store HistoryStore, verifier auth.Verifier, log logger.Logger) *API {
	return &API{proc: proc, store: store, verifier: verifier, logger: log}
}

func registerRoutes(r *gin.Engine, api *API) {
	r.GET("/health", api.handleHealth)
	r.POST("/process", api.handleProcess)
	r.POST("/login", api.handleLogin)

	historyGroup := r.Group("/history", api.requireUser)
	{
		historyGroup.GET("", api.handleListHistory)
		historyGroup.GET("/detail", api.handleHistoryDetail)
		historyGroup.DELETE("/detail", api.handleDeleteHistory)
		historyGroup.GET("/export", api.handleExportHistory)
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type processRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
}

type processResponse struct {
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
}

func (a *API) handleProcess(c *gin.Context) {
	var payload processRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	videoURL := strings.TrimSpace(payload.VideoURL)
	if err := processor.ValidateURL(videoURL); err != nil {
		respondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	ctx := c.Request.Context()

	// Authentication is optional here: a bad token downgrades to anonymous.
	identity, err := auth.Resolve(ctx, a.verifier, c.GetHeader("Authorization"))
	if err != nil {
		a.logger.Warn(ctx, "Processing anonymously, token rejected: %v", err)
	}

	result, err := a.proc.Process(ctx, videoURL, identity)
	if err != nil {
		if errors.Is(err, processor.ErrInvalidURL) {
			respondError(c, http.StatusUnprocessableEntity, err)
			return
		}
		stage, _ := processor.StageOf(err)
		a.logger.Error(ctx, "Pipeline failed at %s stage: %v", stage, err)
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, processResponse{Transcript: result.Transcript, Summary: result.Summary})
}

type loginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

func (a *API) handleLogin(c *gin.Context) {
	var payload loginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := a.verifier.Verify(c.Request.Context(), strings.TrimSpace(payload.IDToken))
	if err != nil {
		respondMessage(c, http.StatusUnauthorized, "Token verification failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
	})
}

// requireUser rejects requests without a verified identity before any
// handler touches the store.
func (a *API) requireUser(c *gin.Context) {
	identity, err := auth.Resolve(c.Request.Context(), a.verifier, c.GetHeader("Authorization"))
	if !identity.Verified() {
		message := "Invalid or missing token"
		if err != nil && !errors.Is(err, auth.ErrMissingToken) && identity.Status == auth.Rejected {
			message = "Token verification failed: " + err.Error()
		}
		respondMessage(c, http.StatusUnauthorized, message)
		c.Abort()
		return
	}
	c.Set(identityKey, identity)
	c.Next()
}

func identityFrom(c *gin.Context) auth.Identity {
	v, _ := c.Get(identityKey)
	identity, _ := v.(auth.Identity)
	return identity
}

func (a *API) handleListHistory(c *gin.Context) {
	records, err := a.store.List(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// queryURL reads the video_url query parameter, answering 400 when absent.
func queryURL(c *gin.Context) (string, bool) {
	videoURL := strings.TrimSpace(c.Query("video_url"))
	if videoURL == "" {
		respondMessage(c, http.StatusBadRequest, "video_url is required")
		return "", false
	}
	return videoURL, true
}

// lookup loads the caller's record for the video_url query parameter. It
// writes the error response itself and reports whether the caller should
// continue.
func (a *API) lookup(c *gin.Context) (history.Record, bool) {
	videoURL, ok := queryURL(c)
	if !ok {
		return history.Record{}, false
	}

	rec, found, err := a.store.Get(c.Request.Context(), identityFrom(c).UserID, videoURL)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return history.Record{}, false
	}
	if !found {
		respondMessage(c, http.StatusNotFound, "Summary not found")
		return history.Record{}, false
	}
	return rec, true
}

func (a *API) handleHistoryDetail(c *gin.Context) {
	rec, ok := a.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (a *API) handleDeleteHistory(c *gin.Context) {
	videoURL, ok := queryURL(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	deleted, err := a.store.Delete(ctx, identityFrom(c).UserID, videoURL)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		respondMessage(c, http.StatusNotFound, "Summary not found")
		return
	}
	a.logger.Info(ctx, "History deleted: %s", videoURL)
	c.Status(http.StatusNoContent)
}

func (a *API) handleExportHistory(c *gin.Context) {
	rec, ok := a.lookup(c)
	if !ok {
		return
	}

	dir, err := os.MkdirTemp("", "export-*")
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	defer os.RemoveAll(dir)

	name := export.FileName(rec.Title, rec.DocID)
	path := filepath.Join(dir, name)
	err = export.WriteFile(path, export.Document{
		Title:       rec.Title,
		VideoURL:    rec.VideoURL,
		Transcript:  rec.Transcript,
		Summary:     rec.Summary,
		ProcessedAt: rec.Timestamp,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	c.FileAttachment(path, name)
}

// respondBindError maps a request body that failed to bind: bodies cut off
// by MaxBodySize get 413, everything else is a validation failure.
func respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondMessage(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	respondError(c, http.StatusUnprocessableEntity, err)
}

func respondError(c *gin.Context, status int, err error) {
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
