// Command import reads a tasks CSV (title,description per row, header
// skipped) and creates each task through the running HTTP API.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	file := flag.String("file", "tasks.csv", "path to the CSV file")
	apiURL := flag.String("url", "http://localhost:8080/tasks", "task creation endpoint")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	f, err := os.Open(*file)

	if err != nil {
		logger.Fatal().Err(err).Str("file", *file).Msg("CSV file not found")
	}

	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	client := &http.Client{Timeout: 10 * time.Second}

	imported := 0

	for line := 0; ; line++ {
		record, err := reader.Read()

		if err == io.EOF {
			break
		}

		if err != nil {
			logger.Error().Err(err).Int("line", line+1).Msg("Skipping unreadable row")
			continue
		}

		if line == 0 {
			// header
			continue
		}

		if len(record) < 2 {
			logger.Error().Int("line", line+1).Msg("Row needs title and description")
			continue
		}

		title, description := record[0], record[1]

		if err := createTask(client, *apiURL, title, description); err != nil {
			logger.Error().Err(err).Str("title", title).Msg("Import failed")
			continue
		}

		logger.Info().Str("title", title).Msg("Imported")
		imported++
	}

	logger.Info().Int("imported", imported).Msg("Import finished")
}

func createTask(client *http.Client, url, title, description string) error {
	payload, err := json.Marshal(map[string]string{
		"title":       title,
		"description": description,
	})

	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))

	if err != nil {
		return err
	}

	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusCreated {
		return &unexpectedStatusError{status: resp.Status}
	}

	return nil
}

type unexpectedStatusError struct {
	status string
}

func (e *unexpectedStatusError) Error() string {
	return "unexpected response status " + e.status
}
