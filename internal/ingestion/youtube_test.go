package ingestion

import (
	"testing"

	"google.golang.org/api/youtube/v3"
)

func TestParseChannelRef(t *testing.T) {
	cases := []struct {
		in       string
		wantKind refKind
		wantVal  string
		wantErr  bool
	}{
		{in: "UCabcdefghijklmnopqrstuv", wantKind: refChannelID, wantVal: "UCabcdefghijklmnopqrstuv"},
		{in: "  UCabcdefghijklmnopqrstuv  ", wantKind: refChannelID, wantVal: "UCabcdefghijklmnopqrstuv"},
		{in: "@SomeCreator", wantKind: refHandle, wantVal: "@SomeCreator"},
		{in: "SomeCreator", wantKind: refHandle, wantVal: "@SomeCreator"},
		{in: "https://www.youtube.com/channel/UCabcdefghijklmnopqrstuv", wantKind: refChannelID, wantVal: "UCabcdefghijklmnopqrstuv"},
		{in: "youtube.com/channel/UCabcdefghijklmnopqrstuv", wantKind: refChannelID, wantVal: "UCabcdefghijklmnopqrstuv"},
		{in: "https://www.youtube.com/@SomeCreator", wantKind: refHandle, wantVal: "@SomeCreator"},
		{in: "https://www.youtube.com/c/SomeCreator", wantKind: refHandle, wantVal: "@SomeCreator"},
		{in: "https://www.youtube.com/user/legacyname", wantKind: refUsername, wantVal: "legacyname"},
		{in: "", wantErr: true},
		{in: "https://www.youtube.com/watch?v=abc123", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseChannelRef(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseChannelRef(%q): expected error, got %+v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseChannelRef(%q): %v", tc.in, err)
		}
		if got.kind != tc.wantKind || got.value != tc.wantVal {
			t.Fatalf("parseChannelRef(%q) = {%d %q}, want {%d %q}", tc.in, got.kind, got.value, tc.wantKind, tc.wantVal)
		}
	}
}

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "PT3M10S", want: 190},
		{in: "PT59S", want: 59},
		{in: "PT1H2M3S", want: 3723},
		{in: "P1DT1S", want: 86401},
		{in: "PT0S", want: 0},
		{in: "", wantErr: true},
		{in: "3M10S", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseISODuration(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseISODuration(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseISODuration(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseISODuration(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestKeepVideo(t *testing.T) {
	long := &youtube.Video{
		Id:             "v1",
		Snippet:        &youtube.VideoSnippet{LiveBroadcastContent: "none"},
		ContentDetails: &youtube.VideoContentDetails{Duration: "PT10M"},
	}
	if !keepVideo(long) {
		t.Fatalf("regular upload must be kept")
	}

	short := &youtube.Video{
		Id:             "v2",
		ContentDetails: &youtube.VideoContentDetails{Duration: "PT45S"},
	}
	if keepVideo(short) {
		t.Fatalf("short must be dropped")
	}

	boundary := &youtube.Video{
		Id:             "v3",
		ContentDetails: &youtube.VideoContentDetails{Duration: "PT3M"},
	}
	if keepVideo(boundary) {
		t.Fatalf("exactly 180s counts as a short")
	}

	live := &youtube.Video{
		Id:                   "v4",
		LiveStreamingDetails: &youtube.VideoLiveStreamingDetails{},
		ContentDetails:       &youtube.VideoContentDetails{Duration: "PT2H"},
	}
	if keepVideo(live) {
		t.Fatalf("livestream must be dropped")
	}

	upcoming := &youtube.Video{
		Id:             "v5",
		Snippet:        &youtube.VideoSnippet{LiveBroadcastContent: "upcoming"},
		ContentDetails: &youtube.VideoContentDetails{Duration: "PT20M"},
	}
	if keepVideo(upcoming) {
		t.Fatalf("upcoming broadcast must be dropped")
	}
}
