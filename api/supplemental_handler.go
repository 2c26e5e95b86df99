package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
)

const snapshotFilename = "info.json"

// handleSnapshot returns the last ingestion snapshot as a download.
func (s *Server) handleSnapshot(c *fiber.Ctx) error {
	records, err := s.config.Store.LoadSnapshot(c.UserContext())
	if errors.Is(err, storage.ErrNoSnapshot) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		s.logger.Error("failed to load snapshot", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load snapshot"})
	}

	if records == nil {
		records = []storage.Record{}
	}

	c.Attachment(snapshotFilename)
	return c.JSON(records)
}

// handleListSupplemental returns every supplemental record.
func (s *Server) handleListSupplemental(c *fiber.Ctx) error {
	records, err := s.config.Store.LoadSupplemental(c.UserContext())
	if err != nil {
		s.logger.Error("failed to load supplemental records", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load supplemental records"})
	}

	if records == nil {
		records = []storage.SupplementalRecord{}
	}
	return c.JSON(records)
}

// handleAddSupplemental appends a question and answer pair. It is indexed on
// the next rebuild.
func (s *Server) handleAddSupplemental(c *fiber.Ctx) error {
	var rec storage.SupplementalRecord
	if err := c.BodyParser(&rec); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if err := rec.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	if err := s.config.Store.AppendSupplemental(c.UserContext(), rec); err != nil {
		s.logger.Error("failed to append supplemental record", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to save supplemental record"})
	}

	s.logger.Info("supplemental record added", "question", rec.Question)
	return c.Status(fiber.StatusCreated).JSON(MessageResponse{Message: "Supplemental record added"})
}
