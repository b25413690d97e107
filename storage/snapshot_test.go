package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/Dosada05/pickem-league/models"
)

type memoryUploader struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMemoryUploader() *memoryUploader {
	return &memoryUploader{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memoryUploader) Upload(_ context.Context, key, contentType string, r io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return &UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *memoryUploader) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryUploader) GetPublicURL(key string) string { return "https://cdn.test/" + key }

func TestArchiveLeaderboard(t *testing.T) {
	up := newMemoryUploader()
	archiver := NewSnapshotArchiver(up)

	rank := 1
	at := time.Date(2026, 9, 14, 18, 30, 0, 0, time.UTC)
	board := &models.Leaderboard{
		CompetitionID: 12,
		Status:        "completed",
		CalculatedAt:  at,
		Entries:       []models.Score{{CompetitionID: 12, UserID: 3, TotalPoints: 40, Rank: &rank}},
	}

	res, err := archiver.ArchiveLeaderboard(context.Background(), "run-1", board)
	if err != nil {
		t.Fatalf("ArchiveLeaderboard error = %v", err)
	}

	wantKey := "snapshots/competitions/12/20260914T183000Z-run-1.json"
	if res.Key != wantKey {
		t.Errorf("key = %q, want %q", res.Key, wantKey)
	}
	if up.contentTypes[wantKey] != "application/json" {
		t.Errorf("content type = %q", up.contentTypes[wantKey])
	}

	var decoded models.Leaderboard
	if err := json.Unmarshal(up.objects[wantKey], &decoded); err != nil {
		t.Fatalf("stored snapshot is not JSON: %v", err)
	}
	if len(decoded.Entries) != 1 || decoded.Entries[0].TotalPoints != 40 {
		t.Errorf("decoded entries = %+v", decoded.Entries)
	}
}

func TestStandingsSnapshotKey(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	got := StandingsSnapshotKey(4, "abc", at)
	if got != "snapshots/leagues/4/20260102T020405Z-abc.json" {
		t.Errorf("StandingsSnapshotKey = %q", got)
	}
}

func TestPublicURL(t *testing.T) {
	base, _ := url.Parse("https://pub.example.com/archive/")
	tests := []struct {
		key  string
		want string
	}{
		{"snapshots/a.json", "https://pub.example.com/archive/snapshots/a.json"},
		{"/snapshots/a.json", "https://pub.example.com/archive/snapshots/a.json"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := publicURL(base, tt.key); got != tt.want {
			t.Errorf("publicURL(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
