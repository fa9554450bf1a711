package usecase

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cast"

	"github.com/m-mizutani/actsync/pkg/domain/interfaces"
	"github.com/m-mizutani/actsync/pkg/domain/model"
	"github.com/m-mizutani/actsync/pkg/domain/types"
	"github.com/m-mizutani/actsync/pkg/utils/errutil"
	"github.com/m-mizutani/actsync/pkg/utils/jsonutil"
)

type syncUseCase struct {
	client interfaces.CatalogClient
	policy model.SyncPolicy
}

// SyncOption is a functional option for the sync use case
type SyncOption func(*syncUseCase)

// WithPolicy replaces the whole sync policy
func WithPolicy(policy model.SyncPolicy) SyncOption {
	return func(uc *syncUseCase) {
		uc.policy = policy
	}
}

// WithMaxUploads caps successful uploads per run. n <= 0 disables the cap.
func WithMaxUploads(n int) SyncOption {
	return func(uc *syncUseCase) {
		uc.policy.MaxUploads = n
	}
}

// WithTrimWindow sets how many tags are kept per action
func WithTrimWindow(n int) SyncOption {
	return func(uc *syncUseCase) {
		uc.policy.TrimWindow = n
	}
}

// WithSizeWarnChars sets the serialized size above which a warning is logged.
// n <= 0 disables the warning.
func WithSizeWarnChars(n int) SyncOption {
	return func(uc *syncUseCase) {
		uc.policy.SizeWarnChars = n
	}
}

// NewSync creates a new instance of SyncUseCase
func NewSync(client interfaces.CatalogClient, opts ...SyncOption) interfaces.SyncUseCase {
	uc := &syncUseCase{
		client: client,
		policy: model.DefaultSyncPolicy(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Sync uploads candidates in input order. Failures of single actions are
// recorded in the report and never stop the run.
func (uc *syncUseCase) Sync(ctx context.Context, candidates []*model.ActionEntry) *model.SyncReport {
	logger := ctxlog.From(ctx)

	index := uc.buildIndex(ctx)
	report := &model.SyncReport{
		Results: make([]*model.UploadResult, 0, len(candidates)),
		Stats:   model.RunStatistics{Existing: len(index)},
	}

	logger.Info("Uploading actions",
		slog.Int("candidates", len(candidates)),
		slog.Int("existing", len(index)),
		slog.Int("max_uploads", uc.policy.MaxUploads),
	)

	for i, candidate := range candidates {
		if uc.policy.MaxUploads > 0 && report.Stats.Uploaded >= uc.policy.MaxUploads {
			report.Stats.Dropped = len(candidates) - i
			logger.Info("Upload cap reached, stopping",
				slog.Int("max_uploads", uc.policy.MaxUploads),
				slog.Int("remaining", report.Stats.Dropped),
			)
			break
		}

		result := uc.syncAction(ctx, i, candidate, index)
		report.Results = append(report.Results, result)
		tally(&report.Stats, result)
	}

	logger.Info("Upload completed",
		slog.Int("existing", report.Stats.Existing),
		slog.Int("uploaded", report.Stats.Uploaded),
		slog.Int("skipped_not_updated", report.Stats.SkippedNotUpdated),
		slog.Int("failed", report.Stats.Failed),
	)

	return report
}

// buildIndex fetches the catalog once. A failed listing degrades to an
// empty index so every candidate gets uploaded.
func (uc *syncUseCase) buildIndex(ctx context.Context) map[types.ActionKey]*model.ActionEntry {
	logger := ctxlog.From(ctx)
	index := make(map[types.ActionKey]*model.ActionEntry)

	existing, err := uc.client.ListActions(ctx)
	if err != nil {
		logger.Warn("Failed to list existing actions, uploading all candidates",
			slog.Any("error", err),
		)
		return index
	}

	for _, action := range existing {
		if action == nil || !action.HasIdentity() {
			continue
		}
		index[action.Key()] = action
	}

	return index
}

// syncAction processes a single candidate. pos is its position in the
// input and names the result when the candidate is nil.
func (uc *syncUseCase) syncAction(ctx context.Context, pos int, candidate *model.ActionEntry, index map[types.ActionKey]*model.ActionEntry) *model.UploadResult {
	if candidate == nil {
		return model.NewFailedResult(positionKey(pos), goerr.New("empty action entry", goerr.V("position", pos)))
	}

	key := candidate.Key()
	logger := ctxlog.From(ctx).With(slog.String("action", key.String()))

	action := candidate.Project()
	if action.TrimTags(uc.policy.TrimWindow) {
		logger.Debug("Trimmed tagInfo",
			slog.Int("before", candidate.TagInfo.Len()),
			slog.Int("after", action.TagInfo.Len()),
		)
	}

	if uc.isUnchanged(ctx, index[key], action) {
		logger.Info("Skipping action, repository not updated since last sync")
		return model.NewSkippedResult(key)
	}

	size, err := jsonutil.EncodedLen(action)
	if err != nil {
		errutil.Handle(ctx, "Failed to serialize action", goerr.Wrap(err, "failed to serialize action", goerr.V("action", key)))
		return model.NewFailedResult(key, err)
	}
	if uc.policy.SizeWarnChars > 0 && size > uc.policy.SizeWarnChars {
		logger.Warn("Action payload is close to the catalog property size limit",
			slog.Int("size", size),
			slog.Int("threshold", uc.policy.SizeWarnChars),
		)
	}

	logger.Info("Uploading action", slog.Int("size", size))

	resp, err := uc.client.UpsertAction(ctx, action)
	if err != nil {
		errutil.Handle(ctx, "Failed to upload action", goerr.Wrap(err, "failed to upsert action", goerr.V("action", key)))
		return model.NewFailedResult(key, err)
	}
	if resp == nil {
		resp = &model.UpsertResult{}
	}

	result := model.NewUploadedResult(key, resp)
	logger.Info("Uploaded action", slog.String("outcome", string(result.Outcome())))
	return result
}

// isUnchanged reports whether remote and action carry the same
// repoInfo.updated_at instant. Missing or unparsable timestamps mean the
// comparison is unavailable and the action is uploaded.
func (uc *syncUseCase) isUnchanged(ctx context.Context, remote, action *model.ActionEntry) bool {
	if remote == nil {
		return false
	}

	remoteValue, ok := remote.UpdatedAt()
	if !ok {
		return false
	}
	localValue, ok := action.UpdatedAt()
	if !ok {
		return false
	}

	remoteTime, err := cast.ToTimeE(remoteValue)
	if err != nil {
		ctxlog.From(ctx).Debug("Failed to parse remote updated_at", slog.Any("value", remoteValue), slog.Any("error", err))
		return false
	}
	localTime, err := cast.ToTimeE(localValue)
	if err != nil {
		ctxlog.From(ctx).Debug("Failed to parse local updated_at", slog.Any("value", localValue), slog.Any("error", err))
		return false
	}

	return remoteTime.Equal(localTime)
}

// positionKey names an input slot that carries no action identity
func positionKey(pos int) types.ActionKey {
	return types.ActionKey("#" + strconv.Itoa(pos))
}

func tally(stats *model.RunStatistics, result *model.UploadResult) {
	switch result.Outcome() {
	case model.OutcomeFailed:
		stats.Failed++
	case model.OutcomeSkipped:
		stats.SkippedNotUpdated++
	case model.OutcomeCreated:
		stats.Uploaded++
		stats.Created++
	case model.OutcomeUpdated:
		stats.Uploaded++
		stats.Updated++
	default:
		stats.Uploaded++
	}
}
