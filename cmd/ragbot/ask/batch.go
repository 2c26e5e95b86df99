package askcmder

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jskoiz/llama3-chatbot-with-rag/api"
)

// ErrNoQuestions is returned when a questions file has no usable rows.
var ErrNoQuestions = errors.New("no questions found")

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, question string) (*api.QueryResponse, error)
}

// ReadQuestions returns the first column of every non-blank CSV row. A first
// row whose first cell is "question" is treated as a header.
func ReadQuestions(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading questions: %w", err)
	}

	questions := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(row[0])
		if i == 0 && strings.EqualFold(cell, "question") {
			continue
		}
		if cell == "" {
			continue
		}
		questions = append(questions, cell)
	}

	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}

// AskAll asks each question in order and writes question, response and
// time_taken rows to out. A failed question is recorded with the error as
// its response and a time of zero; the run continues.
func AskAll(ctx context.Context, asker Asker, questions []string, out io.Writer) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"question", "response", "time_taken"}); err != nil {
		return err
	}

	for _, q := range questions {
		if err := ctx.Err(); err != nil {
			w.Flush()
			return err
		}

		row := []string{q, "", "0"}
		resp, err := asker.Ask(ctx, q)
		if err != nil {
			row[1] = "error: " + err.Error()
		} else {
			row[1] = resp.Response
			row[2] = strconv.FormatFloat(resp.TimeTaken, 'f', 2, 64)
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
