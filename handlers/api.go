package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/nijaru/lexai/errors"
	"github.com/nijaru/lexai/models"
	"github.com/nijaru/lexai/services/summarizer"
	"github.com/sirupsen/logrus"
)

type APIHandler struct {
	service summarizer.Service
	logger  logrus.FieldLogger
}

func NewAPIHandler(service summarizer.Service, logger logrus.FieldLogger) *APIHandler {
	return &APIHandler{service: service, logger: logger}
}

// VideoInfo handles POST /api/video-info
func (h *APIHandler) VideoInfo(c *fiber.Ctx) error {
	var req models.VideoURLRequest
	if err := readJSON(c, "APIHandler.VideoInfo", &req); err != nil {
		return err
	}

	info, err := h.service.VideoInfo(c.UserContext(), req.URL)
	if err != nil {
		return err
	}
	return c.JSON(info)
}

// Summarize handles POST /api/summarize
func (h *APIHandler) Summarize(c *fiber.Ctx) error {
	var req models.VideoURLRequest
	if err := readJSON(c, "APIHandler.Summarize", &req); err != nil {
		return err
	}

	summary, err := h.service.Summarize(c.UserContext(), req.URL)
	if err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID(c),
		"url":        req.URL,
	}).Info("Summary served")
	return c.JSON(models.SummaryResponse{Summary: summary})
}

// Answer handles POST /api/answer
func (h *APIHandler) Answer(c *fiber.Ctx) error {
	var req models.QuestionRequest
	if err := readJSON(c, "APIHandler.Answer", &req); err != nil {
		return err
	}

	answer, err := h.service.Answer(c.UserContext(), req.Summary, req.Question)
	if err != nil {
		return err
	}
	return c.JSON(models.AnswerResponse{Answer: answer})
}

func readJSON(c *fiber.Ctx, op string, v interface{}) error {
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return errors.InvalidInput(op, err, "Invalid JSON format")
	}
	return nil
}
