package ingestion

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/yungbote/toxicity-backend/internal/data/repos"
	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pkg/dbctx"
	"github.com/yungbote/toxicity-backend/internal/pkg/envutil"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

// maxShortSeconds is the cutoff under which an upload is treated as a Short
// and excluded from ingestion.
const maxShortSeconds = 180

type Stats struct {
	Videos   int `json:"videos"`
	Comments int `json:"comments"`
}

type Ingester interface {
	// ResolveChannelID canonicalizes user input (channel URL, @handle, legacy
	// username or a raw UC... id) into a channel id.
	ResolveChannelID(ctx context.Context, raw string) (string, error)
	// IngestChannel pulls the channel's uploads and their comment threads into
	// the database. Shorts and livestreams are skipped.
	IngestChannel(ctx context.Context, channelID string) (Stats, error)
}

type youtubeIngester struct {
	log *logger.Logger
	svc *youtube.Service

	channels repos.ChannelRepo
	videos   repos.VideoRepo
	comments repos.CommentRepo

	maxVideos           int
	maxCommentsPerVideo int
	fanout              int
}

func NewYouTubeIngester(
	log *logger.Logger,
	channels repos.ChannelRepo,
	videos repos.VideoRepo,
	comments repos.CommentRepo,
) (Ingester, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "YouTubeIngester")

	key := strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY"))
	if key == "" {
		return nil, fmt.Errorf("YOUTUBE_API_KEY is required")
	}

	svc, err := youtube.NewService(context.Background(), option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("init youtube client: %w", err)
	}

	return &youtubeIngester{
		log:                 slog,
		svc:                 svc,
		channels:            channels,
		videos:              videos,
		comments:            comments,
		maxVideos:           envutil.Int("YOUTUBE_MAX_VIDEOS", 200),
		maxCommentsPerVideo: envutil.Int("YOUTUBE_MAX_COMMENTS_PER_VIDEO", 100),
		fanout:              envutil.Int("YOUTUBE_FANOUT", 4),
	}, nil
}

func (y *youtubeIngester) ResolveChannelID(ctx context.Context, raw string) (string, error) {
	ref, err := parseChannelRef(raw)
	if err != nil {
		return "", err
	}
	switch ref.kind {
	case refChannelID:
		return ref.value, nil
	case refHandle:
		return y.lookupChannelID(ctx, func(c *youtube.ChannelsListCall) *youtube.ChannelsListCall {
			return c.ForHandle(ref.value)
		}, "handle", ref.value)
	case refUsername:
		return y.lookupChannelID(ctx, func(c *youtube.ChannelsListCall) *youtube.ChannelsListCall {
			return c.ForUsername(ref.value)
		}, "username", ref.value)
	default:
		return "", fmt.Errorf("unrecognized channel reference %q", raw)
	}
}

func (y *youtubeIngester) lookupChannelID(
	ctx context.Context,
	apply func(*youtube.ChannelsListCall) *youtube.ChannelsListCall,
	refKind, refValue string,
) (string, error) {
	call := apply(y.svc.Channels.List([]string{"id"}).Context(ctx))
	resp, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("resolve channel by %s %q: %w", refKind, refValue, err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("no channel found for %s %q", refKind, refValue)
	}
	return resp.Items[0].Id, nil
}

func (y *youtubeIngester) IngestChannel(ctx context.Context, channelID string) (Stats, error) {
	var stats Stats
	dbc := dbctx.Context{Ctx: ctx}
	log := y.log.With("channel_id", channelID)

	resp, err := y.svc.Channels.List([]string{"snippet", "contentDetails"}).
		Id(channelID).Context(ctx).Do()
	if err != nil {
		return stats, fmt.Errorf("fetch channel: %w", err)
	}
	if len(resp.Items) == 0 {
		return stats, fmt.Errorf("channel %s not found on youtube", channelID)
	}
	item := resp.Items[0]
	uploads := ""
	if item.ContentDetails != nil && item.ContentDetails.RelatedPlaylists != nil {
		uploads = item.ContentDetails.RelatedPlaylists.Uploads
	}
	if uploads == "" {
		return stats, fmt.Errorf("channel %s has no uploads playlist", channelID)
	}

	ch := &types.Channel{ID: channelID, UploadsPlaylist: uploads}
	if item.Snippet != nil {
		ch.Name = item.Snippet.Title
	}
	if err := y.channels.Upsert(dbc, ch); err != nil {
		return stats, fmt.Errorf("store channel: %w", err)
	}

	videoIDs, err := y.listUploads(ctx, uploads)
	if err != nil {
		return stats, err
	}
	log.Info("Channel uploads listed", "count", len(videoIDs))

	kept, err := y.fetchVideos(ctx, channelID, videoIDs)
	if err != nil {
		return stats, err
	}
	if len(kept) > 0 {
		if err := y.videos.UpsertBatch(dbc, kept); err != nil {
			return stats, fmt.Errorf("store videos: %w", err)
		}
	}
	stats.Videos = len(kept)

	total, err := y.fetchComments(ctx, kept)
	if err != nil {
		return stats, err
	}
	stats.Comments = total

	log.Info("Channel ingested", "videos", stats.Videos, "comments", stats.Comments)
	return stats, nil
}

func (y *youtubeIngester) listUploads(ctx context.Context, playlistID string) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		call := y.svc.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(playlistID).MaxResults(50).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list uploads: %w", err)
		}
		for _, it := range resp.Items {
			if it.ContentDetails == nil || it.ContentDetails.VideoId == "" {
				continue
			}
			ids = append(ids, it.ContentDetails.VideoId)
			if y.maxVideos > 0 && len(ids) >= y.maxVideos {
				return ids, nil
			}
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return ids, nil
		}
	}
}

// fetchVideos hydrates metadata for the given ids and drops Shorts and
// livestreams; the ids come back as domain rows ready to upsert.
func (y *youtubeIngester) fetchVideos(ctx context.Context, channelID string, ids []string) ([]*types.Video, error) {
	var out []*types.Video
	for start := 0; start < len(ids); start += 50 {
		end := start + 50
		if end > len(ids) {
			end = len(ids)
		}
		resp, err := y.svc.Videos.List([]string{"snippet", "contentDetails", "liveStreamingDetails"}).
			Id(ids[start:end]...).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("fetch videos: %w", err)
		}
		for _, v := range resp.Items {
			if !keepVideo(v) {
				continue
			}
			row := &types.Video{ID: v.Id, ChannelID: channelID}
			if v.Snippet != nil {
				row.Title = v.Snippet.Title
				if ts, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
					row.PublishedAt = &ts
				}
			}
			out = append(out, row)
		}
	}
	return out, nil
}

func keepVideo(v *youtube.Video) bool {
	if v == nil {
		return false
	}
	if v.LiveStreamingDetails != nil {
		return false
	}
	if v.Snippet != nil && v.Snippet.LiveBroadcastContent != "" && v.Snippet.LiveBroadcastContent != "none" {
		return false
	}
	if v.ContentDetails != nil {
		secs, err := parseISODuration(v.ContentDetails.Duration)
		if err == nil && secs <= maxShortSeconds {
			return false
		}
	}
	return true
}

func (y *youtubeIngester) fetchComments(ctx context.Context, videos []*types.Video) (int, error) {
	fanout := y.fanout
	if fanout < 1 {
		fanout = 1
	}

	var mu sync.Mutex
	total := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanout)
	for _, v := range videos {
		v := v
		g.Go(func() error {
			rows, err := y.commentsForVideo(gctx, v.ID)
			if err != nil {
				if commentsUnavailable(err) {
					y.log.Warn("Comments unavailable; skipping video", "video_id", v.ID, "error", err)
					return nil
				}
				return err
			}
			if len(rows) == 0 {
				return nil
			}
			if err := y.comments.UpsertBatch(dbctx.Context{Ctx: gctx}, rows); err != nil {
				return fmt.Errorf("store comments for video %s: %w", v.ID, err)
			}
			mu.Lock()
			total += len(rows)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, nil
}

func (y *youtubeIngester) commentsForVideo(ctx context.Context, videoID string) ([]*types.Comment, error) {
	var rows []*types.Comment
	pageToken := ""
	for {
		call := y.svc.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).MaxResults(100).TextFormat("plainText").Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, th := range resp.Items {
			if th.Snippet == nil || th.Snippet.TopLevelComment == nil {
				continue
			}
			top := th.Snippet.TopLevelComment
			row := &types.Comment{ID: top.Id, VideoID: videoID}
			if top.Snippet != nil {
				row.Author = top.Snippet.AuthorDisplayName
				row.Text = top.Snippet.TextDisplay
				if ts, err := time.Parse(time.RFC3339, top.Snippet.PublishedAt); err == nil {
					row.PublishedAt = &ts
				}
			}
			rows = append(rows, row)
			if y.maxCommentsPerVideo > 0 && len(rows) >= y.maxCommentsPerVideo {
				return rows, nil
			}
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return rows, nil
		}
	}
}

// commentsUnavailable matches the 403 the API returns for videos with
// comments turned off.
func commentsUnavailable(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == 403 {
		return true
	}
	return false
}

type refKind int

const (
	refUnknown refKind = iota
	refChannelID
	refHandle
	refUsername
)

type channelRef struct {
	kind  refKind
	value string
}

func parseChannelRef(raw string) (channelRef, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return channelRef{}, fmt.Errorf("empty channel reference")
	}

	if strings.HasPrefix(s, "UC") && len(s) == 24 && !strings.ContainsAny(s, "/?#") {
		return channelRef{kind: refChannelID, value: s}, nil
	}
	if strings.HasPrefix(s, "@") {
		return channelRef{kind: refHandle, value: s}, nil
	}

	if strings.Contains(s, "youtube.com") || strings.Contains(s, "youtu.be") {
		if !strings.Contains(s, "://") {
			s = "https://" + s
		}
		u, err := url.Parse(s)
		if err != nil {
			return channelRef{}, fmt.Errorf("parse channel url: %w", err)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 0 || parts[0] == "" {
			return channelRef{}, fmt.Errorf("channel url %q has no path", raw)
		}
		switch {
		case parts[0] == "channel" && len(parts) > 1:
			return channelRef{kind: refChannelID, value: parts[1]}, nil
		case parts[0] == "user" && len(parts) > 1:
			return channelRef{kind: refUsername, value: parts[1]}, nil
		case parts[0] == "c" && len(parts) > 1:
			return channelRef{kind: refHandle, value: "@" + parts[1]}, nil
		case strings.HasPrefix(parts[0], "@"):
			return channelRef{kind: refHandle, value: parts[0]}, nil
		default:
			return channelRef{}, fmt.Errorf("unrecognized channel url %q", raw)
		}
	}

	// Bare word: treat as a handle, the current YouTube convention.
	return channelRef{kind: refHandle, value: "@" + s}, nil
}

// parseISODuration converts the API's ISO 8601 durations (PT1H2M3S) into
// seconds. Date components beyond days never occur for video lengths.
func parseISODuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] != 'P' {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	total := 0
	num := 0
	haveNum := false
	inTime := false
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			haveNum = true
		case r == 'T':
			inTime = true
		default:
			if !haveNum {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			switch r {
			case 'D':
				total += num * 86400
			case 'H':
				total += num * 3600
			case 'M':
				if inTime {
					total += num * 60
				} else {
					return 0, fmt.Errorf("unsupported duration component in %q", s)
				}
			case 'S':
				total += num
			default:
				return 0, fmt.Errorf("unsupported duration component in %q", s)
			}
			num = 0
			haveNum = false
		}
	}
	return total, nil
}
