// Package scan glues a request to an engine and the verdict pipeline.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"forrealscan/api/internal/engine"
	"forrealscan/api/internal/prompt"
	"forrealscan/api/internal/util"
	"forrealscan/api/internal/verdict"
)

const DefaultMaxImageBytes = 10 << 20

type Request struct {
	// Image wins over ImageBase64 when both are set.
	Image       []byte
	ImageBase64 string
	MIME        string
	LLMName     string
	Mode        string
}

type Result struct {
	Record verdict.Record
	// Failure is the problem absorbed into a default record, nil when the
	// record came from the model's answer.
	Failure verdict.Failure
	Engine  string
	Model   string
	Mode    string
}

type Service struct {
	engs     *engine.Engines
	prompts  *prompt.Set
	maxImage int64
	log      *slog.Logger
}

func New(engs *engine.Engines, prompts *prompt.Set, maxImage int64, log *slog.Logger) *Service {
	if maxImage <= 0 {
		maxImage = DefaultMaxImageBytes
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{engs: engs, prompts: prompts, maxImage: maxImage, log: log}
}

func (s *Service) MaxImageBytes() int64 { return s.maxImage }

// Analyze returns a record for every request that passes the caller checks,
// including when the upstream fails. The error is either a caller error
// (errors.Is ErrInvalidRequest) or an internal fault.
func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	img, mime, err := s.decodeImage(req)
	if err != nil {
		return Result{}, err
	}
	eng, err := s.engs.GetEngine(req.LLMName)
	if err != nil {
		return Result{}, invalid(ErrUnknownEngine, err)
	}
	prof, err := s.prompts.Get(req.Mode)
	if err != nil {
		return Result{}, invalid(ErrUnknownMode, err)
	}

	in := engine.Input{
		Image:  img,
		MIME:   mime,
		System: prof.System,
		User:   prof.User,
		Model:  prof.ModelFor(eng.Name()),
		Schema: verdict.Schema(),
	}
	model := eng.GetModel()
	if in.Model != "" {
		model = in.Model
	}

	start := time.Now()
	text, err := eng.Complete(ctx, in)
	elapsed := time.Since(start)

	var c verdict.Completion
	if err != nil {
		if errors.Is(err, engine.ErrNotConfigured) {
			return Result{}, err
		}
		c.Upstream = upstreamFailure(err)
		s.log.Warn("upstream call failed",
			"engine", eng.Name(), "model", model, "mode", prof.Name,
			"elapsed", elapsed, "err", err)
	} else {
		c.Text = text
	}

	rec, failure := verdict.Run(c)
	if err := verdict.Conforms(rec); err != nil {
		return Result{}, fmt.Errorf("scan: record violates schema: %w", err)
	}

	if failure != nil && failure.Kind() != verdict.KindUpstream {
		s.log.Info("model answer replaced by default",
			"engine", eng.Name(), "model", model, "kind", failure.Kind(), "reason", failure.Reason())
	}
	s.log.Debug("scan done",
		"engine", eng.Name(), "model", model, "mode", prof.Name,
		"score", rec.Score, "label", rec.Label, "elapsed", elapsed)

	return Result{
		Record:  rec,
		Failure: failure,
		Engine:  eng.Name(),
		Model:   model,
		Mode:    prof.Name,
	}, nil
}

// AnalyzeImage is Analyze for callers that already hold the raw bytes.
func (s *Service) AnalyzeImage(ctx context.Context, img []byte, mime, llmName, mode string) (Result, error) {
	return s.Analyze(ctx, Request{Image: img, MIME: mime, LLMName: llmName, Mode: mode})
}

func (s *Service) decodeImage(req Request) ([]byte, string, error) {
	img, hint := req.Image, ""
	if len(img) == 0 {
		if strings.TrimSpace(req.ImageBase64) == "" {
			return nil, "", ErrNoImage
		}
		var err error
		img, hint, err = util.DecodeBase64MaybeDataURL(req.ImageBase64)
		if err != nil {
			return nil, "", invalid(ErrBadImage, fmt.Errorf("bad image base64: %w", err))
		}
		if len(img) == 0 {
			return nil, "", ErrBadImage
		}
	}
	if int64(len(img)) > s.maxImage {
		return nil, "", fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(img), s.maxImage)
	}
	mime := util.PickMIME(req.MIME, hint, img)
	if !util.IsSupportedImageMIME(mime) {
		return nil, "", fmt.Errorf("%w: %s (need jpeg, png, webp or gif)", ErrUnsupportedImage, mime)
	}
	return img, mime, nil
}

func upstreamFailure(err error) *verdict.UpstreamFailure {
	var ue *engine.UpstreamError
	if errors.As(err, &ue) {
		return verdict.NewUpstreamFailure(ue.Status, strings.TrimSpace(ue.Body))
	}
	return verdict.NewUpstreamFailure(0, err.Error())
}
