package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-image-translator/internal/config"
	apperrors "go-image-translator/internal/errors"
	"go-image-translator/internal/logger"
	"go-image-translator/internal/observer"
	"go-image-translator/internal/service"
	"go-image-translator/pkg/models"
)

// multipartOverhead is the framing allowance on top of the attachment
// byte ceiling: boundaries, part headers and the closing delimiter.
const multipartOverhead = 64 * 1024

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler builds the HTTP surface of the service.
func NewHandler(svc service.TranslationService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestID(),
		corsMiddleware(cfg.AllowedOrigins),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", metricsHandler(metrics))

	translate := r.Group("/translate")
	translate.Use(requestSizeLimiter(cfg.MaxUploadBytes + multipartOverhead))
	translate.POST("/image", translateImage(svc, cfg))
	translate.POST("/url", translateURL(svc, cfg))
	translate.POST("/text", translateText(svc, cfg))
	translate.POST("/batch", translateBatch(svc, cfg))

	return r
}

func translateImage(svc service.TranslationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "image")

		contentType := c.GetHeader("Content-Type")
		if !strings.HasPrefix(contentType, "multipart/form-data") {
			respondError(c, http.StatusUnsupportedMediaType, "expected multipart/form-data", nil)
			return
		}

		body, err := readBody(c)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to read request body", err)
			return
		}

		resp, err := svc.TranslateUpload(ctx, body, contentType, c.Query("expected_text"))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "translation failed", err)
			return
		}
		resp.RequestID = c.GetString(requestIDKey)

		logCompleted(c, "image", resp)
		c.JSON(http.StatusOK, resp)
	}
}

func translateURL(svc service.TranslationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "url")

		var req models.URLTranslationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.TranslateImageURL(ctx, req.URL, req.ExpectedText)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "translation failed", err)
			return
		}
		resp.RequestID = c.GetString(requestIDKey)

		logCompleted(c, "url", resp)
		c.JSON(http.StatusOK, resp)
	}
}

func translateText(svc service.TranslationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "text")

		var req models.TextTranslationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.TranslateText(ctx, req.Text)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "translation failed", err)
			return
		}
		resp.RequestID = c.GetString(requestIDKey)

		logCompleted(c, "text", resp)
		c.JSON(http.StatusOK, resp)
	}
}

func translateBatch(svc service.TranslationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "batch")

		contentType := c.GetHeader("Content-Type")
		if !strings.HasPrefix(contentType, "multipart/form-data") {
			respondError(c, http.StatusUnsupportedMediaType, "expected multipart/form-data", nil)
			return
		}

		body, err := readBody(c)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to read request body", err)
			return
		}

		resp, err := svc.TranslateBatch(ctx, body, contentType)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "batch translation failed", err)
			return
		}
		resp.RequestID = c.GetString(requestIDKey)

		logger.WithFields(logrus.Fields{
			"request_id": resp.RequestID,
			"count":      resp.Count,
		}).Info("Batch translation completed")
		c.JSON(http.StatusOK, resp)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func metricsHandler(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

// readBody drains the request body, translating the size limiter's
// rejection into the payload error category.
func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, apperrors.NewPayloadTooLargeError("request body exceeds the size limit", err)
		}
		return nil, apperrors.NewInternalError("failed to read request body", err)
	}
	return body, nil
}

// Middleware and helper functions

const requestIDKey = "request_id"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 1 && allowedOrigins[0] == "*"
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func logRequest(c *gin.Context, source string) {
	logger.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"source":     source,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"ip":         c.ClientIP(),
	}).Info("Processing translation request")
}

func logCompleted(c *gin.Context, source string, resp *models.TranslationResponse) {
	logger.WithFields(logrus.Fields{
		"request_id":         resp.RequestID,
		"source":             source,
		"has_text":           resp.HasText,
		"source_script":      resp.SourceScript,
		"processing_time_ms": int64(resp.ProcessingTimeSec * 1000),
	}).Info("Translation completed")
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	resp := ErrorResponse{Error: http.StatusText(code)}
	if err != nil {
		resp.Message = fmt.Sprintf("%s: %v", message, err)
	} else {
		resp.Message = message
	}
	c.AbortWithStatusJSON(code, resp)
}
