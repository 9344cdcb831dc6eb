package service

import (
	"context"

	"gcsbridge/internal/core/classify"
	"gcsbridge/internal/core/prompt"
	"gcsbridge/internal/core/xliff"
	perr "gcsbridge/internal/platform/errors"
	"gcsbridge/internal/platform/logger"
	"gcsbridge/internal/services/connector/domain"
)

// processTask runs a single actionable task end to end. Fresh translations
// enumerate the task's assets; retranslations carry a direct asset URL.
func (s *Svc) processTask(ctx context.Context, r *retrier, task classify.Task) error {
	switch task.Kind {
	case classify.Translate:
		return s.processTranslate(ctx, r, task)
	case classify.ReTranslate:
		return s.processReTranslate(ctx, r, task)
	default:
		return nil
	}
}

func (s *Svc) processTranslate(ctx context.Context, r *retrier, task classify.Task) error {
	log := logger.C(ctx)

	var assets []domain.Asset
	err := s.call(ctx, r, func(token string) error {
		var err error
		assets, err = s.deps.Content.Assets(ctx, token, task)
		return err
	})
	if err != nil {
		return perr.WithOp(err, "connector.assets")
	}
	if len(assets) == 0 {
		log.Warn().Msg("task has no assets to translate")
		return nil
	}
	log.Info().Int("assets", len(assets)).Str("source", task.SourceLocale).Str("target", task.TargetLocale).
		Msg("translating task assets")

	for _, asset := range assets {
		if asset.ObjectKey == "" {
			// one unkeyed asset must not sink the rest of the task
			log.Warn().Str("asset", asset.Name).Str("locale", task.SourceLocale).
				Msg("asset has no normalized source url, skipping")
			continue
		}

		var doc []byte
		err := s.call(ctx, r, func(token string) error {
			var err error
			doc, err = s.deps.Content.Content(ctx, token, task.TenantID, asset.ObjectKey)
			return err
		})
		if err != nil {
			return perr.WithOp(err, "connector.content")
		}

		if err := s.translateAndSubmit(ctx, r, task, asset.Name, doc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Svc) processReTranslate(ctx context.Context, r *retrier, task classify.Task) error {
	var doc []byte
	err := s.call(ctx, r, func(token string) error {
		var err error
		doc, err = s.deps.Content.FetchURL(ctx, token, task.AssetURL)
		return err
	})
	if err != nil {
		return perr.WithOp(err, "connector.fetch_asset")
	}
	return s.translateAndSubmit(ctx, r, task, task.AssetName, doc)
}

// translateAndSubmit runs the LLM round trip on one document, uploads the
// result, and marks the asset complete.
func (s *Svc) translateAndSubmit(ctx context.Context, r *retrier, task classify.Task, assetName string, doc []byte) error {
	translated, err := s.translateDoc(ctx, r, task, doc)
	if err != nil {
		return err
	}

	var storedURL string
	err = s.call(ctx, r, func(token string) error {
		var err error
		storedURL, err = s.deps.Content.Upload(ctx, token, task.TenantID, assetName, task.TargetLocale, translated)
		return err
	})
	if err != nil {
		return perr.WithOp(err, "connector.upload")
	}

	err = s.call(ctx, r, func(token string) error {
		return s.deps.Content.Complete(ctx, token,
			task.ProjectID, task.TaskID, assetName, task.TargetLocale, task.TenantID, storedURL)
	})
	if err != nil {
		return perr.WithOp(err, "connector.complete")
	}

	logger.C(ctx).Info().Str("asset", assetName).Str("url", storedURL).Msg("asset translated and completed")
	return nil
}

// translateDoc extracts the document's segments, batches them through the
// model, and injects the replies. Documents with nothing translatable pass
// through unchanged.
func (s *Svc) translateDoc(ctx context.Context, r *retrier, task classify.Task, doc []byte) ([]byte, error) {
	segs, err := xliff.Extract(doc)
	if err != nil {
		return nil, perr.WithOp(err, "connector.extract")
	}
	if len(segs) == 0 {
		logger.C(ctx).Warn().Msg("document has no translatable segments")
		return doc, nil
	}

	p := prompt.Build(task.SourceLocale, task.TargetLocale, segs)

	var reply string
	for {
		reply, err = s.deps.Translator.Complete(ctx, p)
		if err == nil {
			break
		}
		if perr.IsTransient(err) && r.next() {
			continue
		}
		return nil, perr.WithOp(err, "connector.translate")
	}

	parsed := prompt.ParseResponse(reply, len(segs))
	if len(parsed) == 0 {
		return nil, perr.Malformedf("model reply matched no segments")
	}
	if len(parsed) < len(segs) {
		logger.C(ctx).Warn().Int("expected", len(segs)).Int("parsed", len(parsed)).
			Msg("model reply missing segments, untranslated units keep their source")
	}

	translations := make(map[string]string, len(parsed))
	for i, seg := range segs {
		if text, ok := parsed[i]; ok {
			translations[seg.UnitID] = text
		}
	}

	out, err := xliff.Inject(doc, task.TargetLocale, translations)
	if err != nil {
		return nil, perr.WithOp(err, "connector.inject")
	}
	return out, nil
}
