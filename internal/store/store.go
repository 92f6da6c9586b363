// Package store 基于sqlite的故事/运行流水持久化。
// 落库永远是尽力而为：存储失败不应影响故事生成本身。
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"storyweaver/internal/model"
)

// ErrNotFound 查询的故事不存在
var ErrNotFound = errors.New("story not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS stories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	user_request TEXT NOT NULL,
	story TEXT NOT NULL,
	revision_count INTEGER NOT NULL DEFAULT 0,
	judge_score REAL NOT NULL DEFAULT 0,
	judge_feedback TEXT NOT NULL DEFAULT '',
	meets_threshold INTEGER NOT NULL DEFAULT 0,
	model_used TEXT NOT NULL DEFAULT '',
	mcp_enabled INTEGER NOT NULL DEFAULT 0,
	fallback_used INTEGER NOT NULL DEFAULT 0,
	tool_calls TEXT NOT NULL DEFAULT '[]',
	parent_settings TEXT NOT NULL DEFAULT '{}',
	storyteller_temperature REAL NOT NULL DEFAULT 0,
	judge_temperature REAL NOT NULL DEFAULT 0,
	max_story_tokens INTEGER NOT NULL DEFAULT 0,
	quality_threshold REAL NOT NULL DEFAULT 0,
	max_revisions INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	user_request TEXT NOT NULL,
	success INTEGER NOT NULL DEFAULT 0,
	model_used TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	mcp_enabled INTEGER NOT NULL DEFAULT 0,
	fallback_used INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_stories_timestamp ON stories(timestamp);
CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
`

// StoredStory 落库后的故事记录
type StoredStory struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	model.GenerationResult
	RunSettings model.RunSettings `json:"run_settings"`
}

// Statistics 库内故事/运行的汇总统计
type Statistics struct {
	TotalStories      int            `json:"total_stories"`
	TotalRuns         int            `json:"total_runs"`
	SuccessfulRuns    int            `json:"successful_runs"`
	FailedRuns        int            `json:"failed_runs"`
	AverageJudgeScore float64        `json:"average_judge_score"`
	StoriesByModel    map[string]int `json:"stories_by_model"`
	MCPEnabledCount   int            `json:"mcp_enabled_count"`
	FallbackUsedCount int            `json:"fallback_used_count"`
}

// Store 故事数据库
type Store struct {
	db *sql.DB
}

// Open 打开（或创建）数据库并初始化表结构
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?cache=shared", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite单写者，限制连接数避免SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveStory 保存一条生成结果及其运行参数，返回新记录ID
func (s *Store) SaveStory(ctx context.Context, res model.GenerationResult, settings model.RunSettings) (int64, error) {
	toolCalls, err := json.Marshal(res.ToolCalls)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal tool calls: %w", err)
	}
	if res.ToolCalls == nil {
		toolCalls = []byte("[]")
	}
	parentSettings, err := json.Marshal(res.ParentSettings)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal parent settings: %w", err)
	}
	if res.ParentSettings == nil {
		parentSettings = []byte("{}")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO stories (
			timestamp, user_request, story, revision_count, judge_score,
			judge_feedback, meets_threshold, model_used, mcp_enabled,
			fallback_used, tool_calls, parent_settings,
			storyteller_temperature, judge_temperature, max_story_tokens,
			quality_threshold, max_revisions
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), res.UserRequest, res.Story,
		res.RevisionCount, res.JudgeScore, res.JudgeFeedback,
		boolToInt(res.MeetsQualityThreshold), res.ModelUsed,
		boolToInt(res.MCPEnabled), boolToInt(res.FallbackUsed),
		string(toolCalls), string(parentSettings),
		settings.StorytellerTemperature, settings.JudgeTemperature,
		settings.MaxStoryTokens, settings.QualityThreshold, settings.MaxRevisions,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save story: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read story id: %w", err)
	}
	return id, nil
}

// SaveRun 记录一次运行流水
func (s *Store) SaveRun(ctx context.Context, run model.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			timestamp, user_request, success, model_used, error_message,
			duration_ms, mcp_enabled, fallback_used
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Timestamp.UTC().Format(time.RFC3339), run.UserRequest,
		boolToInt(run.Success), run.ModelUsed, run.ErrorMessage,
		run.Duration.Milliseconds(), boolToInt(run.MCPEnabled),
		boolToInt(run.FallbackUsed),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

const storyColumns = `id, timestamp, user_request, story, revision_count,
	judge_score, judge_feedback, meets_threshold, model_used, mcp_enabled,
	fallback_used, tool_calls, parent_settings, storyteller_temperature,
	judge_temperature, max_story_tokens, quality_threshold, max_revisions`

// Stories 按时间倒序返回最近的故事
func (s *Store) Stories(ctx context.Context, limit int) ([]StoredStory, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM stories ORDER BY id DESC LIMIT ?", storyColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()

	var stories []StoredStory
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

// StoryByID 查询单条故事，不存在返回ErrNotFound
func (s *Store) StoryByID(ctx context.Context, id int64) (StoredStory, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM stories WHERE id = ?", storyColumns), id)
	story, err := scanStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredStory{}, ErrNotFound
	}
	return story, err
}

// DeleteStory 删除一条故事，不存在返回ErrNotFound
func (s *Store) DeleteStory(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM stories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats 汇总统计
func (s *Store) Stats(ctx context.Context) (Statistics, error) {
	stats := Statistics{StoriesByModel: map[string]int{}}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(judge_score), 0),
			COALESCE(SUM(mcp_enabled), 0), COALESCE(SUM(fallback_used), 0)
		FROM stories`).Scan(
		&stats.TotalStories, &stats.AverageJudgeScore,
		&stats.MCPEnabledCount, &stats.FallbackUsedCount)
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to query story stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(success), 0) FROM runs`).Scan(
		&stats.TotalRuns, &stats.SuccessfulRuns)
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to query run stats: %w", err)
	}
	stats.FailedRuns = stats.TotalRuns - stats.SuccessfulRuns

	rows, err := s.db.QueryContext(ctx,
		"SELECT model_used, COUNT(*) FROM stories GROUP BY model_used")
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to query model stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return Statistics{}, err
		}
		stats.StoriesByModel[name] = count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(row rowScanner) (StoredStory, error) {
	var story StoredStory
	var ts, toolCalls, parentSettings string
	var meets, mcp, fallback int

	err := row.Scan(
		&story.ID, &ts, &story.UserRequest, &story.Story,
		&story.RevisionCount, &story.JudgeScore, &story.JudgeFeedback,
		&meets, &story.ModelUsed, &mcp, &fallback,
		&toolCalls, &parentSettings,
		&story.RunSettings.StorytellerTemperature,
		&story.RunSettings.JudgeTemperature,
		&story.RunSettings.MaxStoryTokens,
		&story.RunSettings.QualityThreshold,
		&story.RunSettings.MaxRevisions,
	)
	if err != nil {
		return StoredStory{}, err
	}

	story.Timestamp, _ = time.Parse(time.RFC3339, ts)
	story.MeetsQualityThreshold = meets != 0
	story.MCPEnabled = mcp != 0
	story.FallbackUsed = fallback != 0

	if err := json.Unmarshal([]byte(toolCalls), &story.ToolCalls); err != nil {
		return StoredStory{}, fmt.Errorf("failed to unmarshal tool calls: %w", err)
	}
	if err := json.Unmarshal([]byte(parentSettings), &story.ParentSettings); err != nil {
		return StoredStory{}, fmt.Errorf("failed to unmarshal parent settings: %w", err)
	}
	return story, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
