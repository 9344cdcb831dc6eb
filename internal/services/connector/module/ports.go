package module

import (
	"context"

	"gcsbridge/internal/adapters/gcs"
	"gcsbridge/internal/adapters/ims"
	"gcsbridge/internal/adapters/journal"
	"gcsbridge/internal/core/classify"
	"gcsbridge/internal/services/connector/domain"
)

// tokenSource adapts the IMS client to domain.TokenPort
type tokenSource struct {
	ims *ims.Client
}

func (t tokenSource) Fetch(ctx context.Context) (domain.Token, error) {
	tok, err := t.ims.Fetch(ctx)
	if err != nil {
		return domain.Token{}, err
	}
	return domain.Token{Value: tok.Value, ExpiresAt: tok.ExpiresAt}, nil
}

// journalSource adapts the journal client to domain.JournalPort
type journalSource struct {
	j *journal.Client
}

func (s journalSource) Fetch(ctx context.Context, token, cursor string) (domain.EventPage, error) {
	page, err := s.j.Fetch(ctx, token, cursor)
	if err != nil {
		return domain.EventPage{}, err
	}
	out := domain.EventPage{Next: page.Next}
	for _, ev := range page.Events {
		out.Events = append(out.Events, domain.Event{ID: ev.ID, Body: ev.Body})
	}
	return out, nil
}

// contentSource adapts the GCS client to domain.ContentPort, resolving each
// asset's storage key against the task's tenant and source locale
type contentSource struct {
	g *gcs.Client
}

func (s contentSource) Assets(ctx context.Context, token string, task classify.Task) ([]domain.Asset, error) {
	assets, err := s.g.Assets(ctx, token, task.ProjectID, task.TaskID, task.TargetLocale, task.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Asset, 0, len(assets))
	for _, a := range assets {
		out = append(out, domain.Asset{
			Name:      a.Name,
			ObjectKey: a.ObjectKey(task.TenantID, task.SourceLocale),
		})
	}
	return out, nil
}

func (s contentSource) Content(ctx context.Context, token, tenantID, objectKey string) ([]byte, error) {
	return s.g.AssetContent(ctx, token, tenantID, objectKey)
}

func (s contentSource) FetchURL(ctx context.Context, token, assetURL string) ([]byte, error) {
	return s.g.FetchURL(ctx, token, assetURL)
}

func (s contentSource) Upload(ctx context.Context, token, tenantID, assetName, targetLocale string, content []byte) (string, error) {
	return s.g.Upload(ctx, token, tenantID, assetName, targetLocale, content)
}

func (s contentSource) Complete(ctx context.Context, token, projectID, taskID, assetName, targetLocale, tenantID, translatedURL string) error {
	return s.g.Complete(ctx, token, projectID, taskID, assetName, targetLocale, tenantID, translatedURL)
}
