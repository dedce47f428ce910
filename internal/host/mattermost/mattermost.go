// Package mattermost integrates voice messages with a Mattermost channel:
// the channel is the mount point for the record control and the upload
// target for delivered recordings.
package mattermost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/cenkalti/backoff/v5"
	"github.com/mattermost/mattermost/server/public/model"
	"go.uber.org/zap"

	"github.com/devbydaniel/voicemsg/internal/domain/voice"
)

const postType = "custom_voice_message"

// client is the subset of *model.Client4 used here.
type client interface {
	GetPing(ctx context.Context) (string, *model.Response, error)
	GetChannelByNameForTeamName(ctx context.Context, channelName, teamName string, etag string) (*model.Channel, *model.Response, error)
	UploadFile(ctx context.Context, data []byte, channelID string, filename string) (*model.FileUploadResponse, *model.Response, error)
	CreatePost(ctx context.Context, post *model.Post) (*model.Post, *model.Response, error)
}

// Options select the target channel.
type Options struct {
	URL     string
	Token   string
	Team    string
	Channel string
}

// Host resolves the target channel and uploads recordings to it.
type Host struct {
	client  client
	team    string
	channel string
	logger  *zap.Logger

	mu        sync.Mutex
	channelID string
}

func New(opts Options, logger *zap.Logger) *Host {
	c := model.NewAPIv4Client(opts.URL)
	c.SetToken(opts.Token)
	return newHost(c, opts.Team, opts.Channel, logger)
}

func newHost(c client, team, channel string, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{client: c, team: team, channel: channel, logger: logger}
}

// Ready succeeds once the server answers and the channel exists.
// Authentication failures are permanent and stop readiness polling.
func (h *Host) Ready(ctx context.Context) error {
	if _, resp, err := h.client.GetPing(ctx); err != nil {
		return classify(fmt.Errorf("pinging server: %w", err), resp)
	}

	ch, resp, err := h.client.GetChannelByNameForTeamName(ctx, h.channel, h.team, "")
	if err != nil {
		return classify(fmt.Errorf("looking up channel %s/%s: %w", h.team, h.channel, err), resp)
	}

	h.mu.Lock()
	h.channelID = ch.Id
	h.mu.Unlock()
	h.logger.Debug("mattermost channel resolved", zap.String("channel_id", ch.Id))
	return nil
}

func classify(err error, resp *model.Response) error {
	if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		return backoff.Permanent(err)
	}
	return err
}

// Attach uploads the recording and posts it to the channel.
func (h *Host) Attach(ctx context.Context, artifact *voice.Artifact) error {
	h.mu.Lock()
	channelID := h.channelID
	h.mu.Unlock()
	if channelID == "" {
		return errors.New("mattermost channel not resolved")
	}

	upload, _, err := h.client.UploadFile(ctx, artifact.Bytes, channelID, artifact.Filename)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", artifact.Filename, err)
	}
	if upload == nil || len(upload.FileInfos) == 0 {
		return fmt.Errorf("uploading %s: no file info returned", artifact.Filename)
	}

	post := &model.Post{
		ChannelId: channelID,
		Message:   "🎤 Voice message",
		Type:      postType,
		FileIds:   []string{upload.FileInfos[0].Id},
	}
	created, _, err := h.client.CreatePost(ctx, post)
	if err != nil {
		return fmt.Errorf("creating post: %w", err)
	}
	h.logger.Info("voice message posted",
		zap.String("post_id", created.Id),
		zap.String("file_id", upload.FileInfos[0].Id),
	)
	return nil
}
