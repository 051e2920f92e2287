package listener

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"go.uber.org/zap"

	"pga/internal/config"
	"pga/internal/connectors"
	gmailconnector "pga/internal/connectors/gmail"
	imapconnector "pga/internal/connectors/imap"
	"pga/internal/logging"
	"pga/internal/pipeline"
	"pga/internal/util"
)

// Processor is the part of pipeline.ProcessingService the listener needs.
type Processor interface {
	Process(ctx context.Context, req pipeline.ProcessRequest) (pipeline.ProcessResult, error)
}

type Service struct {
	cfg       config.Config
	fetcher   *connectors.FetchService
	processor Processor
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(cfg config.Config, connector connectors.MailConnector, processor Processor, logger *zap.Logger) *Service {
	logger = logging.OrNop(logger)
	return &Service{
		cfg:       cfg,
		fetcher:   connectors.NewFetchService(connector, connectors.NewMailStore(cfg.RawMailDir), logger),
		processor: processor,
		logger:    logger,
		now:       time.Now,
	}
}

type CycleResult struct {
	Fetched   int
	New       int
	Processed int
	Failed    int
}

// Run polls the mailbox until ctx is cancelled. A failed cycle is logged and
// retried on the next tick.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.MailListenerIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	for {
		res, err := s.RunCycle(ctx)
		if err != nil {
			s.logger.Error("listener cycle failed", zap.Error(err))
		} else {
			s.logger.Info("listener cycle done",
				zap.Int("fetched", res.Fetched),
				zap.Int("new", res.New),
				zap.Int("processed", res.Processed),
				zap.Int("failed", res.Failed),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	fetched, err := s.fetcher.FetchAndStore(ctx, s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return CycleResult{}, err
	}

	res := CycleResult{Fetched: fetched.Fetched, New: len(fetched.New)}
	for _, msg := range fetched.New {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		processed, failed := s.processMessage(ctx, msg)
		res.Processed += processed
		res.Failed += failed
	}
	return res, nil
}

func (s *Service) processMessage(ctx context.Context, msg connectors.StoredMessage) (processed, failed int) {
	logger := s.logger.With(
		zap.String("provider", msg.Message.Provider),
		zap.String("message_id", msg.Message.MessageID),
	)

	env, err := enmime.ReadEnvelope(bytes.NewReader(msg.Message.Raw))
	if err != nil {
		logger.Warn("message could not be parsed", zap.Error(err))
		return 0, 1
	}

	subject := util.FirstNonEmpty(msg.Message.Subject, env.GetHeader("Subject"))
	year, institution := ParseSubject(subject, s.now())

	for _, att := range pdfAttachments(env) {
		res, err := s.processor.Process(ctx, pipeline.ProcessRequest{
			FileName:        att.FileName,
			Content:         att.Content,
			InstitutionName: institution,
			Year:            year,
		})
		if err != nil {
			logger.Warn("attachment processing failed", zap.String("file", att.FileName), zap.Error(err))
			failed++
			continue
		}
		logger.Info("attachment processed",
			zap.String("file", att.FileName),
			zap.String("id", res.ID),
			zap.String("institution", res.Document.InstitutionName),
		)
		processed++
	}
	return processed, failed
}

func pdfAttachments(env *enmime.Envelope) []*enmime.Part {
	var out []*enmime.Part
	for _, group := range [][]*enmime.Part{env.Attachments, env.Inlines, env.OtherParts} {
		for i, part := range group {
			if !isPDF(part) {
				continue
			}
			if part.FileName == "" {
				part.FileName = fmt.Sprintf("anexo-%d.pdf", i+1)
			}
			out = append(out, part)
		}
	}
	return out
}

func isPDF(part *enmime.Part) bool {
	return strings.EqualFold(part.ContentType, "application/pdf") ||
		strings.EqualFold(filepath.Ext(part.FileName), ".pdf")
}

// NewConnector builds the mail connector for provider ("imap" or "gmail").
func NewConnector(ctx context.Context, cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(ctx, cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", provider)
	}
}
