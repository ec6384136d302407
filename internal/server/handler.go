package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/amishk599/scgen/internal/model"
	"github.com/amishk599/scgen/internal/tracing"
)

// GeneratePath is the single generation route.
const GeneratePath = "/api/generate"

const (
	msgPromptRequired = "Prompt is required"
	msgBodyTooLarge   = "Request body too large"
	msgGenerateFailed = "Failed to generate response"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Content string `json:"content"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	if s.provider == nil {
		s.metrics.generations.WithLabelValues(outcomeNotConfigured).Inc()
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: model.ErrNotConfigured.Error()})
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.metrics.generations.WithLabelValues(outcomeInvalid).Inc()
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
				Error:   msgBodyTooLarge,
				Details: fmt.Sprintf("limit is %d bytes", maxErr.Limit),
			})
			return
		}
		verr := &model.ValidationError{Message: msgPromptRequired, Err: err}
		s.logger.Debug("rejecting generation request", "error", verr, "request_id", RequestIDFrom(c))
		s.metrics.generations.WithLabelValues(outcomeInvalid).Inc()
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgPromptRequired, Details: err.Error()})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.metrics.generations.WithLabelValues(outcomeInvalid).Inc()
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgPromptRequired})
		return
	}

	ctx, span := tracing.Start(c.Request.Context(), "llm.complete")
	span.SetAttributes(
		attribute.String("llm.provider", s.providerName),
		attribute.Int("llm.prompt_bytes", len(req.Prompt)),
	)
	start := time.Now()
	content, err := s.provider.Complete(ctx, req.Prompt)
	s.metrics.upstreamDuration.WithLabelValues(s.providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream failure")
		span.End()

		s.logger.Error("error generating response", "error", err, "request_id", RequestIDFrom(c))
		s.metrics.generations.WithLabelValues(outcomeUpstreamError).Inc()
		c.JSON(http.StatusBadGateway, errorResponse{Error: upstreamMessage(err), Details: err.Error()})
		return
	}
	span.End()

	s.metrics.generations.WithLabelValues(outcomeSuccess).Inc()
	c.JSON(http.StatusOK, generateResponse{Content: content})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "provider": s.providerName})
}

// upstreamMessage is the provider's own error text when it sent one.
func upstreamMessage(err error) string {
	var upErr *model.UpstreamError
	if errors.As(err, &upErr) && upErr.Message != "" {
		return upErr.Message
	}
	return msgGenerateFailed
}
