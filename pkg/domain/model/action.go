package model

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/m-mizutani/actsync/pkg/domain/types"
)

// ActionEntry is one action of the catalog. Loosely shaped properties are
// kept as raw JSON and forwarded as they are.
type ActionEntry struct {
	Owner                 string          `json:"owner"`
	Name                  string          `json:"name"`
	ActionType            json.RawMessage `json:"actionType,omitempty"`
	RepoInfo              json.RawMessage `json:"repoInfo,omitempty"`
	TagInfo               *TagList        `json:"tagInfo,omitempty"`
	ReleaseInfo           json.RawMessage `json:"releaseInfo,omitempty"`
	ForkFound             *bool           `json:"forkFound,omitempty"`
	MirrorLastUpdated     json.RawMessage `json:"mirrorLastUpdated,omitempty"`
	RepoSize              *float64        `json:"repoSize,omitempty"`
	SecretScanningEnabled *bool           `json:"secretScanningEnabled,omitempty"`
	DependabotEnabled     *bool           `json:"dependabotEnabled,omitempty"`
	Dependabot            json.RawMessage `json:"dependabot,omitempty"`
	VulnerabilityStatus   json.RawMessage `json:"vulnerabilityStatus,omitempty"`
	Ossf                  json.RawMessage `json:"ossf,omitempty"`
	OssfScore             *float64        `json:"ossfScore,omitempty"`
	OssfDateLastUpdate    json.RawMessage `json:"ossfDateLastUpdate,omitempty"`
	Dependents            json.RawMessage `json:"dependents,omitempty"`
	Verified              *bool           `json:"verified,omitempty"`
}

// Key returns the owner/name identity of the action
func (e *ActionEntry) Key() types.ActionKey {
	return types.NewActionKey(e.Owner, e.Name)
}

// HasIdentity reports whether both owner and name are set
func (e *ActionEntry) HasIdentity() bool {
	return e.Owner != "" && e.Name != ""
}

// UpdatedAt returns repoInfo.updated_at as a string, or as int64 epoch
// seconds when it is a number. ok is false when the timestamp is absent or
// null.
func (e *ActionEntry) UpdatedAt() (value any, ok bool) {
	if !present(e.RepoInfo) {
		return nil, false
	}
	res := gjson.GetBytes(e.RepoInfo, "updated_at")
	if !res.Exists() || res.Type == gjson.Null {
		return nil, false
	}
	if res.Type == gjson.Number {
		return res.Int(), true
	}
	return res.Value(), true
}

// TrimTags trims tagInfo to the newest maxCount tags in place
func (e *ActionEntry) TrimTags(maxCount int) bool {
	if e.TagInfo == nil {
		return false
	}
	return e.TagInfo.TrimToLatest(maxCount)
}

// Project copies the action onto the schema accepted by the catalog. owner
// and name are always copied; other properties only when set and not null.
// The tag list is cloned so trimming the projection leaves e intact.
func (e *ActionEntry) Project() *ActionEntry {
	return &ActionEntry{
		Owner:                 e.Owner,
		Name:                  e.Name,
		ActionType:            cloneRaw(e.ActionType),
		RepoInfo:              cloneRaw(e.RepoInfo),
		TagInfo:               e.TagInfo.Clone(),
		ReleaseInfo:           cloneRaw(e.ReleaseInfo),
		ForkFound:             e.ForkFound,
		MirrorLastUpdated:     cloneRaw(e.MirrorLastUpdated),
		RepoSize:              e.RepoSize,
		SecretScanningEnabled: e.SecretScanningEnabled,
		DependabotEnabled:     e.DependabotEnabled,
		Dependabot:            cloneRaw(e.Dependabot),
		VulnerabilityStatus:   cloneRaw(e.VulnerabilityStatus),
		Ossf:                  cloneRaw(e.Ossf),
		OssfScore:             e.OssfScore,
		OssfDateLastUpdate:    cloneRaw(e.OssfDateLastUpdate),
		Dependents:            cloneRaw(e.Dependents),
		Verified:              e.Verified,
	}
}

// present reports whether a raw property carries a value
func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if !present(raw) {
		return nil
	}
	return slices.Clone(raw)
}
