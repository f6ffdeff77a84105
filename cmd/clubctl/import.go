// cmd/clubctl/import.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	progressbar "github.com/schollz/progressbar/v3"
	excelize "github.com/xuri/excelize/v2"

	"github.com/clubfutbol/clubsite/internal/config"
	"github.com/clubfutbol/clubsite/internal/db"
	"github.com/clubfutbol/clubsite/internal/sheetsync"
)

type importCmd struct {
	File       string   `arg:"" help:"Workbook (.xlsx) to import." type:"existingfile"`
	Endpoint   string   `help:"Sync endpoint URL. When empty, rows are written directly to the configured database."`
	Token      string   `help:"Bearer token for the sync endpoint." env:"SYNC_TOKEN"`
	Sheet      []string `help:"Sheets to import. Defaults to every sheet named after a sync type."`
	DryRun     bool     `help:"Read the workbook and report row counts without syncing."`
	NoProgress bool     `help:"Hide the progress bar."`
}

// applier sends one sync request somewhere and returns the result message.
type applier interface {
	apply(ctx context.Context, req sheetsync.Request) (string, error)
}

func (a *importCmd) Run(g *globalCmd) error {
	ctx := context.Background()

	f, err := excelize.OpenFile(a.File)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	batches, skipped, err := readWorkbook(f, a.Sheet)
	if err != nil {
		return err
	}
	for _, name := range skipped {
		log.Warn().Str("sheet", name).Msg("Skipping sheet that does not name a sync type")
	}
	if len(batches) == 0 {
		return fmt.Errorf("no importable sheets in %s", a.File)
	}

	if a.DryRun {
		for _, b := range batches {
			log.Info().Str("sheet", b.Sheet).Str("type", b.Request.Type).Int("rows", len(b.Request.Data)).Msg("Dry run")
		}
		return nil
	}

	var target applier
	if a.Endpoint != "" {
		target = &endpointApplier{
			url:    a.Endpoint,
			token:  a.Token,
			client: &http.Client{Timeout: 60 * time.Second},
		}
	} else {
		cfg, err := config.Load(g.Config)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		database, err := db.NewFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer database.Close()
		target = &serviceApplier{svc: sheetsync.NewService(database)}
	}

	bar := progressbar.NewOptions(len(batches),
		progressbar.OptionSetDescription("importing"),
		progressbar.OptionSetVisibility(!a.NoProgress),
	)
	for _, b := range batches {
		msg, err := target.apply(ctx, b.Request)
		if err != nil {
			return fmt.Errorf("sheet %q: %w", b.Sheet, err)
		}
		bar.Add(1)
		log.Info().Str("sheet", b.Sheet).Int("rows", len(b.Request.Data)).Msg(msg)
	}
	bar.Finish()
	return nil
}

type serviceApplier struct {
	svc *sheetsync.Service
}

func (s *serviceApplier) apply(ctx context.Context, req sheetsync.Request) (string, error) {
	result, err := s.svc.Apply(ctx, req)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

type endpointApplier struct {
	url    string
	token  string
	client *http.Client
}

type syncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e *endpointApplier) apply(ctx context.Context, req sheetsync.Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("post sync: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	var out syncResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("sync returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		return "", fmt.Errorf("sync returned %d: %s", resp.StatusCode, out.Error)
	}
	return out.Message, nil
}
