// Package pipeline orchestrates thumbnail generation end to end: preset
// resolution, prompt enhancement, provider dispatch, optional overlay
// compositing, and object storage upload.
//
// The two provider clients share no interface; Generate branches on the
// requested backend and calls each client's concrete operations. Persistence
// of the returned record is the caller's responsibility.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/TrinityDev369/thumbgen/logger"
	prommetrics "github.com/TrinityDev369/thumbgen/metrics/prometheus"
	"github.com/TrinityDev369/thumbgen/media"
	"github.com/TrinityDev369/thumbgen/overlay"
	"github.com/TrinityDev369/thumbgen/preset"
	"github.com/TrinityDev369/thumbgen/prompt"
	"github.com/TrinityDev369/thumbgen/providers"
	"github.com/TrinityDev369/thumbgen/providers/bfl"
	"github.com/TrinityDev369/thumbgen/providers/reve"
	"github.com/TrinityDev369/thumbgen/storage"
	"github.com/TrinityDev369/thumbgen/store"
)

// Backend selects which provider serves a generation.
type Backend string

// Supported backends.
const (
	BackendPolling     Backend = "polling"
	BackendSynchronous Backend = "synchronous"
)

// MaxDimension bounds requested canvas dimensions.
const MaxDimension = 2048

// DefaultModel is used when neither the request nor the preset names one.
const DefaultModel = "reve-create"

// DefaultAspectRatio is the fallback when GCD reduction yields a ratio the
// synchronous provider does not accept.
const DefaultAspectRatio = "16:9"

// modelUnitCost is the static price table in dollars per generation for the
// polling backend. Synchronous generations are credit-billed by the provider
// and cost 0 here.
var modelUnitCost = map[string]float64{
	"flux-2-pro":         0.05,
	"flux-pro-1.1":       0.04,
	"flux-pro-1.1-ultra": 0.06,
	"flux-dev":           0.025,
	"flux-kontext-pro":   0.04,
}

// CostCents returns the generation cost in cents for a polling-backend model.
// Unknown models cost 0.
func CostCents(model string) int {
	return int(math.Round(modelUnitCost[model] * 100))
}

// AspectRatio reduces (width, height) to a ratio string by greatest common
// divisor, falling back to DefaultAspectRatio when the reduced ratio is not
// one the synchronous provider accepts.
func AspectRatio(width, height int) string {
	if width <= 0 || height <= 0 {
		return DefaultAspectRatio
	}
	d := gcd(width, height)
	ratio := fmt.Sprintf("%d:%d", width/d, height/d)
	if reve.ValidAspectRatio(ratio) {
		return ratio
	}
	return DefaultAspectRatio
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// GenerateRequest is the user-facing input to Generate.
type GenerateRequest struct {
	// Prompt is required.
	Prompt string

	// PresetID selects a preset; unknown ids fail before any network call.
	PresetID string

	// Width and Height override the preset dimensions when positive.
	Width  int
	Height int

	// Model overrides the preset's default model.
	Model string

	// Backend selects the provider. Empty selects BackendSynchronous.
	Backend Backend

	// EnhancePrompt defaults to true; set to skip brand enhancement.
	EnhancePrompt *bool

	// StoreResult defaults to true; set to skip the object store upload.
	StoreResult *bool

	Seed            *int64
	SafetyTolerance *int

	// Overlay, when set, is rendered and composited onto the generated image
	// before upload.
	Overlay *overlay.Options

	// Metadata is carried into the persistence record untouched.
	Metadata map[string]any

	GeneratedBy string
}

// Service wires the pipeline components together. Either provider client may
// be nil when unconfigured; selecting the missing backend is a RequestError.
type Service struct {
	registry   *preset.Registry
	enhancer   *prompt.Enhancer
	polling    *bfl.Client
	sync       *reve.Client
	objects    storage.ObjectStore
	compositor media.Compositor
	pollOpts   *bfl.PollOptions
}

// Config assembles a Service.
type Config struct {
	Registry   *preset.Registry
	Enhancer   *prompt.Enhancer
	Polling    *bfl.Client
	Sync       *reve.Client
	Objects    storage.ObjectStore
	Compositor media.Compositor

	// PollOptions tune the polling backend. Nil selects the client defaults.
	PollOptions *bfl.PollOptions
}

// NewService creates a Service. Registry and enhancer fall back to defaults;
// the compositor defaults to the SVG implementation.
func NewService(cfg Config) *Service {
	registry := cfg.Registry
	if registry == nil {
		registry = preset.NewRegistry()
	}
	enhancer := cfg.Enhancer
	if enhancer == nil {
		enhancer = prompt.NewEnhancer(prompt.DefaultGuidelines())
	}
	compositor := cfg.Compositor
	if compositor == nil {
		compositor = media.NewSVGCompositor()
	}
	return &Service{
		registry:   registry,
		enhancer:   enhancer,
		polling:    cfg.Polling,
		sync:       cfg.Sync,
		objects:    cfg.Objects,
		compositor: compositor,
		pollOpts:   cfg.PollOptions,
	}
}

// Generate runs the full pipeline and returns the persistence record plus the
// final image bytes. The record is not persisted here.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*store.CreateParams, []byte, error) {
	if req.Prompt == "" {
		return nil, nil, &providers.RequestError{Reason: "prompt is required"}
	}

	var p *preset.Preset
	if req.PresetID != "" {
		found, ok := s.registry.Get(req.PresetID)
		if !ok {
			return nil, nil, &providers.RequestError{Reason: fmt.Sprintf("unknown preset %q", req.PresetID)}
		}
		p = &found
	}

	width, height := req.Width, req.Height
	if p != nil {
		width, height = preset.ResolveDimensions(*p, req.Width, req.Height)
	}
	if width <= 0 || height <= 0 {
		return nil, nil, &providers.RequestError{
			Reason: fmt.Sprintf("dimensions must be positive, got %dx%d", width, height),
		}
	}
	if width > MaxDimension || height > MaxDimension {
		return nil, nil, &providers.RequestError{
			Reason: fmt.Sprintf("dimensions exceed the %d px limit, got %dx%d", MaxDimension, width, height),
		}
	}

	model := req.Model
	if model == "" && p != nil {
		model = p.DefaultModel
	}
	if model == "" {
		model = DefaultModel
	}

	backend := req.Backend
	if backend == "" {
		backend = BackendSynchronous
	}

	finalPrompt := req.Prompt
	if req.EnhancePrompt == nil || *req.EnhancePrompt {
		finalPrompt = s.enhancer.Enhance(req.Prompt, p)
	}

	start := time.Now()
	prommetrics.RecordGenerationStart()
	logger.GenerationStarted(string(backend), model, width, height)

	data, seed, err := s.dispatch(ctx, backend, model, finalPrompt, width, height, req)
	if err != nil {
		prommetrics.RecordGenerationEnd(string(backend), model, prommetrics.StatusError, time.Since(start).Seconds())
		logger.GenerationFailed(string(backend), model, err)
		return nil, nil, err
	}

	if req.Overlay != nil {
		svg, err := overlay.Generate(*req.Overlay)
		if err != nil {
			prommetrics.RecordGenerationEnd(string(backend), model, prommetrics.StatusError, time.Since(start).Seconds())
			return nil, nil, err
		}
		data, err = s.compositor.Composite(ctx, data, svg, width, height, media.FormatPNG)
		if err != nil {
			prommetrics.RecordGenerationEnd(string(backend), model, prommetrics.StatusError, time.Since(start).Seconds())
			return nil, nil, err
		}
	}

	record := &store.CreateParams{
		Prompt:        req.Prompt,
		Width:         width,
		Height:        height,
		Model:         model,
		FileSizeBytes: int64(len(data)),
		Metadata:      req.Metadata,
		GeneratedBy:   req.GeneratedBy,
		GenerationParams: map[string]any{
			"backend":        string(backend),
			"originalPrompt": req.Prompt,
			"preset":         req.PresetID,
			"model":          model,
		},
	}
	if finalPrompt != req.Prompt {
		record.EnhancedPrompt = &finalPrompt
	}
	if req.PresetID != "" {
		presetID := req.PresetID
		record.Preset = &presetID
	}
	record.Seed = &seed

	if backend == BackendPolling {
		record.CostCents = CostCents(model)
		prommetrics.RecordGenerationCost(model, record.CostCents)
	}

	if req.StoreResult == nil || *req.StoreResult {
		if s.objects == nil {
			prommetrics.RecordGenerationEnd(string(backend), model, prommetrics.StatusError, time.Since(start).Seconds())
			return nil, nil, &providers.RequestError{Reason: "object store is not configured"}
		}
		// Version 1 keys are named with a temporary id; the DB assigns the
		// durable one at persist time.
		key := storage.ObjectKey(req.PresetID, uuid.NewString(), 1, time.Now().UTC())
		put, err := s.objects.Put(ctx, key, data, storage.DefaultContentType)
		if err != nil {
			prommetrics.RecordStorageUpload(prommetrics.StatusError, 0)
			prommetrics.RecordGenerationEnd(string(backend), model, prommetrics.StatusError, time.Since(start).Seconds())
			logger.GenerationFailed(string(backend), model, err)
			return nil, nil, err
		}
		prommetrics.RecordStorageUpload(prommetrics.StatusSuccess, len(data))
		record.S3Bucket = put.Bucket
		record.S3Key = put.Key
	}

	record.GenerationTimeMs = time.Since(start).Milliseconds()
	prommetrics.RecordGenerationEnd(string(backend), model, prommetrics.StatusSuccess, time.Since(start).Seconds())
	logger.GenerationFinished(string(backend), model, len(data), record.CostCents)

	return record, data, nil
}

// dispatch routes the generation to the selected backend and returns the raw
// image bytes plus the seed to record.
func (s *Service) dispatch(ctx context.Context, backend Backend, model, finalPrompt string, width, height int, req GenerateRequest) ([]byte, int64, error) {
	switch backend {
	case BackendPolling:
		if s.polling == nil {
			return nil, 0, &providers.RequestError{Reason: "polling backend is not configured"}
		}
		params := bfl.GenerateParams{
			Prompt:          finalPrompt,
			Width:           width,
			Height:          height,
			Seed:            req.Seed,
			SafetyTolerance: req.SafetyTolerance,
		}
		_, result, data, err := s.polling.GenerateAndDownload(ctx, model, params, s.pollOpts)
		if err != nil {
			return nil, 0, err
		}
		prommetrics.RecordPollAttempts(result.Attempts)
		return data, result.Seed, nil

	case BackendSynchronous:
		if s.sync == nil {
			return nil, 0, &providers.RequestError{Reason: "synchronous backend is not configured"}
		}
		resp, err := s.sync.Create(ctx, finalPrompt, &reve.Options{
			AspectRatio: AspectRatio(width, height),
		})
		if err != nil {
			return nil, 0, err
		}
		data, err := resp.ImageBytes()
		if err != nil {
			return nil, 0, err
		}
		// Reve does not expose seeds; recorded as 0.
		return data, 0, nil

	default:
		return nil, 0, &providers.RequestError{Reason: fmt.Sprintf("unknown backend %q", backend)}
	}
}
