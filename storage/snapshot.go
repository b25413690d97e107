package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/pickem-league/models"
)

const snapshotContentType = "application/json"

// SnapshotArchiver writes immutable JSON copies of calculation results.
type SnapshotArchiver struct {
	uploader FileUploader
}

func NewSnapshotArchiver(uploader FileUploader) *SnapshotArchiver {
	return &SnapshotArchiver{uploader: uploader}
}

func LeaderboardSnapshotKey(competitionID int, runID string, at time.Time) string {
	return fmt.Sprintf("snapshots/competitions/%d/%s-%s.json", competitionID, at.UTC().Format("20060102T150405Z"), runID)
}

func StandingsSnapshotKey(leagueID int, runID string, at time.Time) string {
	return fmt.Sprintf("snapshots/leagues/%d/%s-%s.json", leagueID, at.UTC().Format("20060102T150405Z"), runID)
}

func (a *SnapshotArchiver) ArchiveLeaderboard(ctx context.Context, runID string, board *models.Leaderboard) (*UploadResult, error) {
	return a.archive(ctx, LeaderboardSnapshotKey(board.CompetitionID, runID, board.CalculatedAt), board)
}

func (a *SnapshotArchiver) ArchiveStandings(ctx context.Context, runID string, standings *models.Standings) (*UploadResult, error) {
	return a.archive(ctx, StandingsSnapshotKey(standings.LeagueID, runID, standings.CalculatedAt), standings)
}

func (a *SnapshotArchiver) archive(ctx context.Context, key string, v interface{}) (*UploadResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot %s: %w", key, err)
	}
	return a.uploader.Upload(ctx, key, snapshotContentType, bytes.NewReader(data))
}
