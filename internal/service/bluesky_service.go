package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	config "github.com/emberfeed/emberfeed/configs"
	"github.com/emberfeed/emberfeed/internal/transfer"
	"github.com/emberfeed/emberfeed/pkg/utils"
)

type BlueskyService interface {
	EnsureSession(ctx context.Context) (*transfer.CreateSessionResponse, error)
	CreatePost(ctx context.Context, text string, createdAt time.Time) (*transfer.CreateRecordResponse, error)
}

type blueskyService struct {
	cfg        config.Config
	httpClient *http.Client

	session       *transfer.CreateSessionResponse
	sessionExpiry time.Time
}

func NewBlueskyService(cfg config.Config) BlueskyService {
	return &blueskyService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// EnsureSession returns the cached session when its access token is still
// fresh, otherwise it logs in again. Authentication failure is fatal for the
// caller's run; there is no per-row recovery for it.
func (b *blueskyService) EnsureSession(ctx context.Context) (*transfer.CreateSessionResponse, error) {
	if b.session != nil && time.Now().Add(time.Minute).Before(b.sessionExpiry) {
		return b.session, nil
	}

	session, err := b.createSession(ctx)
	if err != nil {
		return nil, err
	}

	b.session = session
	b.sessionExpiry = time.Time{}
	if expiry, err := utils.TokenExpiry(session.AccessJwt); err == nil {
		b.sessionExpiry = expiry
	}

	return b.session, nil
}

func (b *blueskyService) createSession(ctx context.Context) (*transfer.CreateSessionResponse, error) {
	body, err := json.Marshal(transfer.CreateSessionRequest{
		Identifier: b.cfg.BlueskyIdentifier,
		Password:   b.cfg.BlueskyPassword,
	})
	if err != nil {
		return nil, err
	}

	url := b.cfg.BlueskyHost + "/xrpc/com.atproto.server.createSession"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("createSession returned %d: %s", resp.StatusCode, msg)
	}

	var session transfer.CreateSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	return &session, nil
}

// CreatePost submits a text record to the account's feed. EnsureSession must
// have succeeded first.
func (b *blueskyService) CreatePost(ctx context.Context, text string, createdAt time.Time) (*transfer.CreateRecordResponse, error) {
	if b.session == nil {
		return nil, fmt.Errorf("no active session")
	}

	body, err := json.Marshal(transfer.CreateRecordRequest{
		Repo:       b.session.Did,
		Collection: transfer.PostCollection,
		Record: transfer.PostRecord{
			Type:      transfer.PostCollection,
			Text:      text,
			CreatedAt: createdAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, err
	}

	url := b.cfg.BlueskyHost + "/xrpc/com.atproto.repo.createRecord"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.session.AccessJwt)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to create record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("createRecord returned %d: %s", resp.StatusCode, msg)
	}

	var record transfer.CreateRecordResponse
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode record response: %w", err)
	}

	return &record, nil
}
