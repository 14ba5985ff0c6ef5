package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	config "github.com/emberfeed/emberfeed/configs"
	"github.com/emberfeed/emberfeed/internal/models"
)

// GenerationSnapshot is one country's monthly generation history as returned
// by the Ember API, with the raw payload retained for archiving.
type GenerationSnapshot struct {
	CountryCode string
	Raw         []byte
	Records     []models.GenerationRecord
}

type EmberService interface {
	FetchMonthlyGeneration(ctx context.Context, countryCode string) (*GenerationSnapshot, error)
	ArchiveSnapshot(ctx context.Context, snapshot *GenerationSnapshot) error
}

type emberService struct {
	cfg        config.Config
	httpClient *http.Client
}

func NewEmberService(cfg config.Config) EmberService {
	return &emberService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *emberService) queryURL(countryCode string) string {
	query := url.Values{}
	query.Set("entity_code", countryCode)
	query.Set("is_aggregate_series", "false")
	query.Set("is_aggregate_entity", "false")
	query.Set("start_date", "2000-01")
	query.Set("api_key", e.cfg.EmberAPIKey)

	return e.cfg.EmberBaseURL + "/v1/electricity-generation/monthly?" + query.Encode()
}

func (e *emberService) FetchMonthlyGeneration(ctx context.Context, countryCode string) (*GenerationSnapshot, error) {
	countryCode = strings.ToUpper(countryCode)
	if !models.ValidCountryCode(countryCode) {
		return nil, fmt.Errorf("invalid country code %q", countryCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.queryURL(countryCode), nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to fetch generation data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ember API returned %d for %s", resp.StatusCode, countryCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []models.GenerationRecord `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode generation data: %w", err)
	}

	flagLatestMonth(payload.Data)

	return &GenerationSnapshot{
		CountryCode: countryCode,
		Raw:         raw,
		Records:     payload.Data,
	}, nil
}

func flagLatestMonth(records []models.GenerationRecord) {
	var max time.Time
	for _, r := range records {
		if r.Date.After(max) {
			max = r.Date
		}
	}
	for i := range records {
		if records[i].Date.Equal(max) {
			records[i].IsLatestMonth = true
		}
	}
}

func (e *emberService) r2Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(e.cfg.R2.AccessKey, e.cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", e.cfg.R2.AccountID))
	}), nil
}

// ArchiveSnapshot uploads the raw API payload to the R2 bucket, replacing the
// previous snapshot for the country.
func (e *emberService) ArchiveSnapshot(ctx context.Context, snapshot *GenerationSnapshot) error {
	client, err := e.r2Client(ctx)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("snapshots/%s-monthly-generation.json", strings.ToLower(snapshot.CountryCode))
	input := &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(snapshot.Raw),
		ContentType: aws.String("application/json"),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
